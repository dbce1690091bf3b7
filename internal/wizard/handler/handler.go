package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vehiclereg/internal/wizard"
	"vehiclereg/internal/wizard/ports"
	"vehiclereg/internal/wizard/steps"
	id "vehiclereg/pkg/domain"
	dErrors "vehiclereg/pkg/domain-errors"
	"vehiclereg/pkg/platform/httputil"
	"vehiclereg/pkg/requestcontext"
)

// Service defines the session operations the handler needs.
type Service interface {
	Start(ctx context.Context, resume string) (*wizard.Wizard, bool, error)
	Get(ctx context.Context, sessionID id.WizardSessionID) (*wizard.Wizard, error)
}

// StartRequest optionally names a session to resume.
type StartRequest struct {
	SessionID string `json:"sessionId"`
}

// SelectRequest is a vehicle picker choice.
type SelectRequest struct {
	Name string `json:"name"`
}

// Handler serves the registration wizard over HTTP.
type Handler struct {
	sessions      Service
	registrations ports.RegistrationReader
	logger        *slog.Logger
}

// New creates a wizard Handler. registrations serves the confirmation
// lookup once a session is confirmed.
func New(sessions Service, registrations ports.RegistrationReader, logger *slog.Logger) *Handler {
	return &Handler{sessions: sessions, registrations: registrations, logger: logger}
}

// Register registers the wizard routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/wizard/sessions", func(r chi.Router) {
		r.Post("/", h.handleStart)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.handleView)
			r.Post("/identity", h.handleIdentity)
			r.Post("/back", h.handleBack)
			r.Post("/vehicle", h.handleVehicle)
			r.Post("/vehicle/select", h.handleSelect)
			r.Get("/registration", h.handleRegistration)
		})
	})
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req StartRequest
	if err := httputil.DecodeJSON(r, &req, true); err != nil {
		httputil.WriteError(w, err)
		return
	}

	wz, created, err := h.sessions.Start(ctx, req.SessionID)
	if err != nil {
		h.fail(ctx, w, "start wizard session", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, wz.View())
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.session(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, wz.View())
}

func (h *Handler) handleIdentity(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.session(w, r)
	if !ok {
		return
	}
	var form steps.IdentityForm
	if err := httputil.DecodeJSON(r, &form, false); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := wz.ContinueIdentity(r.Context(), form); err != nil {
		h.fail(r.Context(), w, "continue identity step", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, wz.View())
}

func (h *Handler) handleBack(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.session(w, r)
	if !ok {
		return
	}
	var form *steps.VehicleForm
	if err := httputil.DecodeJSON(r, &form, true); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := wz.Back(r.Context(), form); err != nil {
		h.fail(r.Context(), w, "go back", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, wz.View())
}

func (h *Handler) handleVehicle(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.session(w, r)
	if !ok {
		return
	}
	var form steps.VehicleForm
	if err := httputil.DecodeJSON(r, &form, false); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if _, err := wz.ContinueVehicle(r.Context(), form); err != nil {
		h.fail(r.Context(), w, "submit registration", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, wz.View())
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SelectRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if _, err := wz.SelectVehicle(r.Context(), req.Name); err != nil {
		h.fail(r.Context(), w, "select vehicle", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, wz.View())
}

// handleRegistration returns the registry's copy of a confirmed session's
// registration.
func (h *Handler) handleRegistration(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.session(w, r)
	if !ok {
		return
	}
	view := wz.View()
	if view.State != wizard.StateConfirmed {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidState, "registration is not confirmed"))
		return
	}
	reg, err := h.registrations.Registration(r.Context(), view.ReferenceID)
	if err != nil {
		h.fail(r.Context(), w, "fetch registration", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reg)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*wizard.Wizard, bool) {
	sessionID, err := id.ParseWizardSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	wz, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	return wz, true
}

// fail logs server-side failures and writes the error envelope. Input
// problems are the client's to fix and are not logged.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, action string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeUnavailable, dErrors.CodeInternal, dErrors.CodeTimeout:
		if _, fields := dErrors.AsFieldErrors(err); !fields {
			h.logger.WarnContext(ctx, "wizard action failed",
				"action", action,
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
	}
	httputil.WriteError(w, err)
}
