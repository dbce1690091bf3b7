package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vehiclereg/internal/registration/models"
	dErrors "vehiclereg/pkg/domain-errors"
	"vehiclereg/pkg/platform/httputil"
	"vehiclereg/pkg/requestcontext"
)

// Service defines the registry operations the handler needs.
type Service interface {
	Catalog(ctx context.Context) models.Catalog
	CheckUnique(ctx context.Context, q models.UniquenessQuery) (models.UniquenessResult, error)
	Register(ctx context.Context, d models.DraftRecord) (*models.Registration, error)
	Registration(ctx context.Context, id string) (*models.Registration, error)
}

// CreatedResponse is returned for an accepted registration.
type CreatedResponse struct {
	User CreatedUser `json:"user"`
}

type CreatedUser struct {
	ID string `json:"id"`
}

// ConflictResponse names the identifier that is already registered.
type ConflictResponse struct {
	Error          string `json:"error"`
	DuplicateField string `json:"duplicateField"`
	Message        string `json:"message"`
}

// Handler serves the registry API.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a registry Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register registers the registry routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/vehicles", h.handleVehicles)
	r.Route("/api/registrations", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Post("/check-unique", h.handleCheckUnique)
		r.Get("/{id}", h.handleGet)
	})
}

func (h *Handler) handleVehicles(w http.ResponseWriter, r *http.Request) {
	catalog := h.service.Catalog(r.Context())
	if catalog == nil {
		catalog = models.Catalog{}
	}
	httputil.WriteJSON(w, http.StatusOK, catalog)
}

func (h *Handler) handleCheckUnique(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var q models.UniquenessQuery
	if err := httputil.DecodeJSON(r, &q, false); err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.service.CheckUnique(ctx, q)
	if err != nil {
		h.fail(ctx, w, "check uniqueness", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var d models.DraftRecord
	if err := httputil.DecodeJSON(r, &d, false); err != nil {
		httputil.WriteError(w, err)
		return
	}

	reg, err := h.service.Register(ctx, d)
	if err != nil {
		if field, ok := dErrors.FieldOf(err); ok && dErrors.HasCode(err, dErrors.CodeConflict) {
			httputil.WriteJSON(w, http.StatusConflict, ConflictResponse{
				Error:          string(dErrors.CodeConflict),
				DuplicateField: field,
				Message:        dErrors.MessageOf(err),
			})
			return
		}
		h.fail(ctx, w, "create registration", err)
		return
	}
	w.Header().Set("Location", "/api/registrations/"+reg.ID)
	httputil.WriteJSON(w, http.StatusCreated, CreatedResponse{User: CreatedUser{ID: reg.ID}})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reg, err := h.service.Registration(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "get registration", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reg)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "failed to "+op,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
