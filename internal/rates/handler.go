package rates

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/relocore/relocore/internal/platform/httpx"
	"github.com/relocore/relocore/internal/shared"
)

// Handler serves the rate-card endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers rate-card routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/lookup", h.lookup)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

// lookup returns the active bands for a destination and move type, the same
// scoped list the pricing engine consumes.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	destination := r.URL.Query().Get("destination")
	moveTypeID, _ := strconv.ParseInt(r.URL.Query().Get("move_type"), 10, 64)
	if destination == "" || moveTypeID <= 0 {
		httpx.RespondError(w, fmt.Errorf("%w: destination and move_type are required", httpx.ErrValidation))
		return
	}

	bands, err := h.service.ActiveBands(r.Context(), destination, moveTypeID)
	if err != nil {
		h.logger.Error("lookup rate bands", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"bands": bands})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListBandsRequest{ActiveOnly: r.URL.Query().Get("active") == "true"}
	if v := r.URL.Query().Get("destination"); v != "" {
		req.DestinationCity = &v
	}
	if v := r.URL.Query().Get("move_type"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: invalid move_type", httpx.ErrValidation))
			return
		}
		req.MoveTypeID = &id
	}
	page, perPage := shared.ParsePageQuery(r)
	req.Limit = perPage
	req.Offset = (page - 1) * perPage

	bands, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list rate bands", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"bands":      bands,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid rate band id", httpx.ErrValidation))
		return
	}
	band, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, band)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateBandRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid payload", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	band, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create rate band", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, band)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid rate band id", httpx.ErrValidation))
		return
	}
	var req UpdateBandRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid payload", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	band, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, band)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid rate band id", httpx.ErrValidation))
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.RespondError(w, fmt.Errorf("%w: rate band", httpx.ErrNotFound))
		return
	}
	h.logger.Error("rate band request failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}
