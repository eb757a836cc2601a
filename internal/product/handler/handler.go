package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-shelf-service/internal/pkg/httpx"
	"github.com/fekuna/omnipos-shelf-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-shelf-service/internal/product"
	"github.com/fekuna/omnipos-shelf-service/internal/product/dto"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ProductHandler) MountRoutes(r chi.Router, importLimit func(http.Handler) http.Handler) {
	r.Get("/products", h.List)
	r.Get("/products/{systemID}", h.Get)
	r.Group(func(r chi.Router) {
		if importLimit != nil {
			r.Use(importLimit)
		}
		r.Post("/product-import", h.Import)
	})
}

func (h *ProductHandler) Import(w http.ResponseWriter, r *http.Request) {
	var records []dto.ProductRecord
	if err := httpx.DecodeJSON(r, &records); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", "payload must be a non-empty list of products")
		return
	}

	result, err := h.uc.ImportProducts(r.Context(), records)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.GetProduct(r.Context(), chi.URLParam(r, "systemID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &dto.ProductFilters{
		Category:    q.Get("category"),
		Brand:       q.Get("brand"),
		SearchQuery: q.Get("q"),
		SortBy:      q.Get("sort_by"),
		SortOrder:   q.Get("sort_order"),
	}
	if p, err := strconv.Atoi(q.Get("page")); err == nil {
		filters.Page = p
	}
	if ps, err := strconv.Atoi(q.Get("page_size")); err == nil {
		filters.PageSize = ps
	}

	items, total, err := h.uc.ListProducts(r.Context(), filters)
	if err != nil {
		h.logger.Error("List products failed", zap.Error(err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dto.ProductList{Items: items, Total: total, Page: filters.Page, PageSize: filters.PageSize})
}
