// Package handler is the thin HTTP layer over the country service. It maps
// requests to service calls and domain errors to HTTP statuses; business logic
// stays in the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"atlas/internal/country/models"
	"atlas/internal/country/service"
	"atlas/internal/country/store"
	"atlas/internal/platform/middleware"
	"atlas/pkg/platform/httputil"
)

const serviceVersion = "1.0.0"

// Service defines the country operations the handler depends on.
type Service interface {
	Refresh(ctx context.Context) (*service.RefreshResult, error)
	List(ctx context.Context, f store.Filter) ([]*models.Country, error)
	Get(ctx context.Context, name string) (*models.Country, error)
	Delete(ctx context.Context, name string) error
	Status(ctx context.Context) (*models.RefreshStatus, error)
}

// Handler wires country endpoints to the country service.
type Handler struct {
	service   Service
	logger    *slog.Logger
	imagePath string
}

// New constructs a country handler. imagePath is where the summary renderer
// writes its artifact.
func New(service Service, logger *slog.Logger, imagePath string) *Handler {
	return &Handler{
		service:   service,
		logger:    logger,
		imagePath: imagePath,
	}
}

// Register mounts all country endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleDescriptor)
	r.Get("/status", h.handleStatus)

	r.Route("/countries", func(r chi.Router) {
		r.Post("/refresh", h.handleRefresh)
		r.Get("/", h.handleList)
		r.Get("/image", h.handleImage)
		r.Get("/{name}", h.handleGet)
		r.Delete("/{name}", h.handleDelete)
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.service.Refresh(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "refresh failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromRefreshResult(result))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f := store.Filter{
		Region:   r.URL.Query().Get("region"),
		Currency: r.URL.Query().Get("currency"),
		Sort:     store.ParseSort(r.URL.Query().Get("sort")),
	}

	countries, err := h.service.List(ctx, f)
	if err != nil {
		h.logger.ErrorContext(ctx, "list countries failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if countries == nil {
		countries = []*models.Country{}
	}

	httputil.WriteJSON(w, http.StatusOK, countries)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	record, err := h.service.Get(ctx, name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	if err := h.service.Delete(ctx, name); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, DeleteResponse{
		Message: "Country deleted successfully",
		Name:    name,
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) handleImage(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(h.imagePath); err != nil {
		httputil.WriteJSON(w, http.StatusNotFound, map[string]string{
			"error": "summary image not found",
		})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, h.imagePath)
}

func (h *Handler) handleDescriptor(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, Descriptor{
		Message: "Country Currency & Exchange API",
		Version: serviceVersion,
		Status:  "active",
		Endpoints: map[string]string{
			"refresh": "POST /countries/refresh",
			"list":    "GET /countries",
			"filters": "GET /countries?region=Africa&currency=NGN&sort=gdp_desc",
			"single":  "GET /countries/{name}",
			"delete":  "DELETE /countries/{name}",
			"status":  "GET /status",
			"image":   "GET /countries/image",
			"metrics": "GET /metrics",
		},
	})
}
