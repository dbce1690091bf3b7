// Package session keeps the wizard sessions of this process. Each session
// owns its own draft snapshot slot, so a session id is all a client needs
// to recover its draft after a reload or a restart.
package session

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"vehiclereg/internal/registration/models"
	"vehiclereg/internal/registration/schema"
	"vehiclereg/internal/wizard"
	"vehiclereg/internal/wizard/draft"
	"vehiclereg/internal/wizard/gate"
	"vehiclereg/internal/wizard/metrics"
	"vehiclereg/internal/wizard/ports"
	"vehiclereg/internal/wizard/steps"
	"vehiclereg/internal/wizard/submission"
	id "vehiclereg/pkg/domain"
	dErrors "vehiclereg/pkg/domain-errors"
	"vehiclereg/pkg/requestcontext"
)

type entry struct {
	wizard   *wizard.Wizard
	lastSeen time.Time
}

// Manager creates, resumes and expires wizard sessions.
type Manager struct {
	backend   draft.Backend
	catalog   ports.CatalogSource
	checker   ports.UniquenessChecker
	submitter ports.Submitter
	logger    *slog.Logger
	metrics   *metrics.Metrics

	mu       sync.RWMutex
	sessions map[id.WizardSessionID]*entry
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// New creates a Manager. All collaborators are required.
func New(backend draft.Backend, catalog ports.CatalogSource, checker ports.UniquenessChecker, submitter ports.Submitter, opts ...Option) (*Manager, error) {
	if backend == nil {
		return nil, errors.New("snapshot backend is required")
	}
	if catalog == nil || checker == nil || submitter == nil {
		return nil, errors.New("catalog, uniqueness checker and submitter are required")
	}
	m := &Manager{
		backend:   backend,
		catalog:   catalog,
		checker:   checker,
		submitter: submitter,
		logger:    slog.Default(),
		sessions:  make(map[id.WizardSessionID]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Start resumes the session named by resume, or opens a new one when resume
// is empty. A resumed id unknown to this process is rebuilt from its
// snapshot slot. created reports whether a new wizard was built.
func (m *Manager) Start(ctx context.Context, resume string) (w *wizard.Wizard, created bool, err error) {
	sessionID := id.NewWizardSessionID()
	if resume != "" {
		sessionID, err = id.ParseWizardSessionID(resume)
		if err != nil {
			return nil, false, err
		}
		if existing, ok := m.touch(sessionID); ok {
			return existing, false, nil
		}
	}

	built, recovered, err := m.build(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	if e, ok := m.sessions[sessionID]; ok {
		e.lastSeen = time.Now()
		m.mu.Unlock()
		return e.wizard, false, nil
	}
	m.sessions[sessionID] = &entry{wizard: built, lastSeen: time.Now()}
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.IncrementSessionStarted(recovered)
	m.metrics.SetActiveSessions(n)
	m.logger.InfoContext(ctx, "wizard session started",
		"session_id", sessionID.String(),
		"request_id", requestcontext.RequestID(ctx),
		"recovered", recovered,
	)
	return built, true, nil
}

// Get returns a live session.
func (m *Manager) Get(ctx context.Context, sessionID id.WizardSessionID) (*wizard.Wizard, error) {
	w, ok := m.touch(sessionID)
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "wizard session not found")
	}
	return w, nil
}

func (m *Manager) touch(sessionID id.WizardSessionID) (*wizard.Wizard, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[sessionID]
	if !ok {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.wizard, true
}

func (m *Manager) build(ctx context.Context, sessionID id.WizardSessionID) (*wizard.Wizard, bool, error) {
	catalog, err := m.catalog.Catalog(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "vehicle catalog fetch failed",
			"session_id", sessionID.String(),
			"error", err,
		)
		return nil, false, dErrors.Wrap(err, dErrors.CodeUnavailable, "vehicle catalog is unavailable")
	}

	sch := schema.New(catalog)
	store := draft.New(m.backend.Slot(sessionID.String()), sch, draft.WithLogger(m.logger))
	recovered := !reflect.DeepEqual(store.Load(ctx), models.Defaults())

	g, err := gate.New(m.checker, gate.WithLogger(m.logger), gate.WithMetrics(m.metrics))
	if err != nil {
		return nil, false, err
	}
	coord, err := submission.New(m.submitter, sch, submission.WithLogger(m.logger), submission.WithMetrics(m.metrics))
	if err != nil {
		return nil, false, err
	}
	identity, err := steps.NewIdentity(sch, g, store)
	if err != nil {
		return nil, false, err
	}
	vehicle, err := steps.NewVehicle(sch, store, coord)
	if err != nil {
		return nil, false, err
	}
	w, err := wizard.New(sessionID, identity, vehicle, catalog,
		wizard.WithLogger(m.logger),
		wizard.WithMetrics(m.metrics),
	)
	if err != nil {
		return nil, false, err
	}
	return w, recovered, nil
}

// Sweep drops sessions idle for longer than idle and returns how many went.
// Their snapshots stay in the backend, so a later Start can recover them.
func (m *Manager) Sweep(now time.Time, idle time.Duration) int {
	m.mu.Lock()
	removed := 0
	for sessionID, e := range m.sessions {
		if now.Sub(e.lastSeen) > idle {
			delete(m.sessions, sessionID)
			removed++
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SetActiveSessions(n)
	return removed
}

// RunSweeper sweeps every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval, idle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if removed := m.Sweep(now, idle); removed > 0 {
				m.logger.DebugContext(ctx, "idle wizard sessions swept", "removed", removed)
			}
		}
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
