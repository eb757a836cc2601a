package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-shelf-service/internal/errs"
	"github.com/fekuna/omnipos-shelf-service/internal/location"
	"github.com/fekuna/omnipos-shelf-service/internal/location/dto"
	"github.com/fekuna/omnipos-shelf-service/internal/pkg/httpx"
	"github.com/fekuna/omnipos-shelf-service/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type LocationHandler struct {
	uc     location.UseCase
	logger logger.ZapLogger
}

func NewLocationHandler(uc location.UseCase, log logger.ZapLogger) *LocationHandler {
	return &LocationHandler{
		uc:     uc,
		logger: log,
	}
}

// MountRoutes registers the lookup and assignment routes. importLimit wraps
// the bulk import route only; pass nil to leave it unlimited.
func (h *LocationHandler) MountRoutes(r chi.Router, importLimit func(http.Handler) http.Handler) {
	r.Get("/lookup", h.Lookup)
	r.Put("/products/{systemID}/locations", h.Assign)
	r.Group(func(r chi.Router) {
		if importLimit != nil {
			r.Use(importLimit)
		}
		r.Post("/import", h.Import)
	})
}

func (h *LocationHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	items, err := h.uc.Lookup(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("Lookup failed", zap.Error(err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *LocationHandler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := httpx.ReadBody(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	records, err := dto.DecodeScanPayload(body)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if len(records) == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", "no scan records")
		return
	}

	result, err := h.uc.AssignBatch(r.Context(), records)
	if result == nil {
		httpx.RespondError(w, err)
		return
	}

	status := http.StatusOK
	if err != nil {
		status = httpx.StatusFor(err)
	}
	httpx.JSON(w, status, dto.ImportResponse{BatchResult: result, Message: result.Message()})
}

func (h *LocationHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var input dto.AssignInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	input.SystemID = chi.URLParam(r, "systemID")

	a, err := h.uc.Assign(r.Context(), &input)
	if err != nil {
		if errs.KindOf(err) != errs.KindValidation {
			h.logger.Warn("Assign failed", zap.String("system_id", input.SystemID), zap.Error(err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}
