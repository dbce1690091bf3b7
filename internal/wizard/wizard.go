// Package wizard drives one registration session through its steps.
//
// Transitions:
//
//	step1_editing --continue ok--> step2_editing --submit ok--> confirmed
//	step2_editing --back--> step1_editing
//
// Failed continues are self-loops. Confirmed is terminal. While a uniqueness
// check or a submission is in flight every other mutation is refused with
// CodeBusy.
package wizard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"vehiclereg/internal/registration/models"
	"vehiclereg/internal/wizard/metrics"
	"vehiclereg/internal/wizard/steps"
	id "vehiclereg/pkg/domain"
	dErrors "vehiclereg/pkg/domain-errors"
	"vehiclereg/pkg/requestcontext"
)

// State is a wizard position.
type State string

const (
	StateIdentity  State = "step1_editing"
	StateVehicle   State = "step2_editing"
	StateConfirmed State = "confirmed"
)

// ErrBusy is returned while another continue for the same session runs.
var ErrBusy = dErrors.New(dErrors.CodeBusy, "a previous action is still in progress")

// View is a snapshot of everything a client needs to render the session.
type View struct {
	SessionID       id.WizardSessionID   `json:"sessionId"`
	State           State                `json:"state"`
	Identity        steps.IdentityForm   `json:"identity"`
	Vehicle         steps.VehicleForm    `json:"vehicle"`
	SelectedVehicle *models.VehicleEntry `json:"selectedVehicle,omitempty"`
	Catalog         models.Catalog       `json:"catalog"`
	ReferenceID     string               `json:"referenceId,omitempty"`
}

// Wizard is one registration session.
type Wizard struct {
	sessionID id.WizardSessionID
	identity  *steps.Identity
	vehicle   *steps.Vehicle
	catalog   models.Catalog
	logger    *slog.Logger
	metrics   *metrics.Metrics

	inFlight atomic.Bool

	mu          sync.Mutex
	state       State
	vehicleForm *steps.VehicleForm
	referenceID string
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		w.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Wizard) {
		w.metrics = m
	}
}

// New creates a wizard at step 1.
func New(sessionID id.WizardSessionID, identity *steps.Identity, vehicle *steps.Vehicle, catalog models.Catalog, opts ...Option) (*Wizard, error) {
	if identity == nil || vehicle == nil {
		return nil, errors.New("both step controllers are required")
	}
	w := &Wizard{
		sessionID: sessionID,
		identity:  identity,
		vehicle:   vehicle,
		catalog:   catalog,
		logger:    slog.Default(),
		state:     StateIdentity,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// SessionID returns the session this wizard serves.
func (w *Wizard) SessionID() id.WizardSessionID {
	return w.sessionID
}

// State returns the current position.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// begin claims the in-flight slot and checks the wizard is in want.
// The returned func releases the slot.
func (w *Wizard) begin(want State) (func(), error) {
	if !w.inFlight.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	release := func() { w.inFlight.Store(false) }

	w.mu.Lock()
	state := w.state
	w.mu.Unlock()
	if state != want {
		release()
		return nil, dErrors.New(dErrors.CodeInvalidState, "action not allowed in state "+string(state))
	}
	return release, nil
}

func (w *Wizard) ctx(ctx context.Context) context.Context {
	return requestcontext.WithWizardSessionID(ctx, w.sessionID)
}

// ContinueIdentity runs step 1 and advances to step 2 on success.
func (w *Wizard) ContinueIdentity(ctx context.Context, form steps.IdentityForm) error {
	release, err := w.begin(StateIdentity)
	if err != nil {
		w.metrics.IncrementStep(steps.StepIdentity, outcome(err))
		return err
	}
	defer release()

	ctx = w.ctx(ctx)
	if _, err := w.identity.Continue(ctx, form); err != nil {
		w.metrics.IncrementStep(steps.StepIdentity, outcome(err))
		return err
	}

	w.mu.Lock()
	w.state = StateVehicle
	w.mu.Unlock()
	w.metrics.IncrementStep(steps.StepIdentity, metrics.OutcomeAdvanced)
	w.logger.InfoContext(ctx, "wizard advanced",
		"session_id", w.sessionID.String(),
		"request_id", requestcontext.RequestID(ctx),
		"state", StateVehicle,
	)
	return nil
}

// Back returns from step 2 to step 1. In-progress step 2 values, when
// given, are kept in the draft without validation.
func (w *Wizard) Back(ctx context.Context, form *steps.VehicleForm) error {
	release, err := w.begin(StateVehicle)
	if err != nil {
		return err
	}
	defer release()

	ctx = w.ctx(ctx)
	w.mu.Lock()
	pending := w.vehicleForm
	if form != nil {
		pending = form
	}
	w.vehicleForm = nil
	w.state = StateIdentity
	w.mu.Unlock()

	if pending != nil {
		w.vehicle.Keep(ctx, *pending)
	}
	return nil
}

// SelectVehicle binds a picker choice into the in-progress step 2 form.
func (w *Wizard) SelectVehicle(ctx context.Context, name string) (steps.VehicleForm, error) {
	release, err := w.begin(StateVehicle)
	if err != nil {
		return steps.VehicleForm{}, err
	}
	defer release()

	w.mu.Lock()
	defer w.mu.Unlock()
	current := w.vehicle.Form()
	if w.vehicleForm != nil {
		current = *w.vehicleForm
	}
	next, err := w.vehicle.Select(current, name)
	if err != nil {
		return current, err
	}
	w.vehicleForm = &next
	return next, nil
}

// ContinueVehicle runs step 2 and, when the registry accepts the draft,
// moves to confirmed and returns the reference id.
func (w *Wizard) ContinueVehicle(ctx context.Context, form steps.VehicleForm) (string, error) {
	release, err := w.begin(StateVehicle)
	if err != nil {
		w.metrics.IncrementStep(steps.StepVehicle, outcome(err))
		return "", err
	}
	defer release()

	ctx = w.ctx(ctx)
	w.mu.Lock()
	w.vehicleForm = &form
	w.mu.Unlock()

	receipt, err := w.vehicle.Continue(ctx, form)
	if err != nil {
		w.metrics.IncrementStep(steps.StepVehicle, outcome(err))
		return "", err
	}

	w.mu.Lock()
	w.state = StateConfirmed
	w.referenceID = receipt.ID
	w.vehicleForm = nil
	w.mu.Unlock()
	w.metrics.IncrementStep(steps.StepVehicle, metrics.OutcomeSubmitted)
	w.logger.InfoContext(ctx, "wizard confirmed",
		"session_id", w.sessionID.String(),
		"request_id", requestcontext.RequestID(ctx),
		"applicant_id", receipt.ID,
	)
	return receipt.ID, nil
}

// View renders the session.
func (w *Wizard) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		SessionID:   w.sessionID,
		State:       w.state,
		Catalog:     w.catalog,
		ReferenceID: w.referenceID,
	}
	if w.state == StateConfirmed {
		return v
	}
	v.Identity = w.identity.Form()
	v.Vehicle = w.vehicle.Form()
	if w.vehicleForm != nil {
		v.Vehicle = *w.vehicleForm
	}
	if entry, ok := w.vehicle.Selected(v.Vehicle); ok {
		v.SelectedVehicle = &entry
	}
	return v
}

func outcome(err error) string {
	switch {
	case dErrors.HasCode(err, dErrors.CodeBusy):
		return metrics.OutcomeBusy
	case dErrors.HasCode(err, dErrors.CodeConflict):
		return metrics.OutcomeConflict
	case dErrors.HasCode(err, dErrors.CodeUnavailable):
		return metrics.OutcomeNetwork
	default:
		return metrics.OutcomeInvalid
	}
}
