package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-shelf-service/internal/category"
	"github.com/fekuna/omnipos-shelf-service/internal/category/dto"
	"github.com/fekuna/omnipos-shelf-service/internal/pkg/httpx"
	"github.com/fekuna/omnipos-shelf-service/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CategoryHandler) MountRoutes(r chi.Router, _ func(http.Handler) http.Handler) {
	r.Get("/categories", h.List)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := &dto.CategoryFilters{Category: r.URL.Query().Get("category")}
	if d, err := strconv.Atoi(r.URL.Query().Get("depth")); err == nil {
		filters.Depth = d
	}

	tree, err := h.uc.ListCategories(r.Context(), filters)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tree)
}
