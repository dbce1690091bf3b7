// Package draft holds the in-progress registration of one wizard session
// and its durable snapshot.
//
// The in-memory draft may be partial or invalid. The durable snapshot never
// is: every write re-validates the full draft schema and is skipped when
// that fails, and a snapshot that fails validation on load is discarded.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"vehiclereg/internal/registration/models"
	"vehiclereg/internal/registration/schema"
	"vehiclereg/pkg/platform/sentinel"
)

// SnapshotStore is a single durable slot holding a serialized draft.
// Read returns sentinel.ErrNotFound when the slot is empty.
type SnapshotStore interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}

// Store owns the draft of one wizard session.
type Store struct {
	mu      sync.Mutex
	slot    SnapshotStore
	schema  *schema.Schema
	logger  *slog.Logger
	current models.DraftRecord
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Store over slot. The draft starts at defaults; call Load to
// recover a snapshot.
func New(slot SnapshotStore, sch *schema.Schema, opts ...Option) *Store {
	s := &Store{
		slot:    slot,
		schema:  sch,
		logger:  slog.Default(),
		current: models.Defaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load recovers the durable snapshot into memory and returns it. A missing,
// undecodable or invalid snapshot yields the defaults; the latter two are
// deleted from the slot. Load never fails.
func (s *Store) Load(ctx context.Context) models.DraftRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = s.recover(ctx)
	return s.current
}

func (s *Store) recover(ctx context.Context) models.DraftRecord {
	data, err := s.slot.Read(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Defaults()
	}
	if err != nil {
		s.logger.WarnContext(ctx, "draft snapshot read failed", "error", err)
		return models.Defaults()
	}

	var d models.DraftRecord
	if err := json.Unmarshal(data, &d); err != nil {
		s.discard(ctx, "decode", err)
		return models.Defaults()
	}
	d = d.Normalize()
	if err := s.schema.ValidateDraft(d); err != nil {
		s.discard(ctx, "validate", err)
		return models.Defaults()
	}
	return d
}

func (s *Store) discard(ctx context.Context, stage string, cause error) {
	s.logger.DebugContext(ctx, "discarding draft snapshot", "stage", stage, "error", cause)
	if err := s.slot.Delete(ctx); err != nil {
		s.logger.WarnContext(ctx, "draft snapshot delete failed", "error", err)
	}
}

// Current returns the in-memory draft.
func (s *Store) Current() models.DraftRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Merge applies patch to the in-memory draft, normalizes it and attempts to
// persist the result. It returns the new in-memory draft.
func (s *Store) Merge(ctx context.Context, patch models.Patch) models.DraftRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = patch.Apply(s.current).Normalize()
	s.persist(ctx, s.current)
	return s.current
}

// Persist writes d to the slot if it passes the full schema and reports
// whether it did. An invalid draft leaves the previous snapshot untouched.
func (s *Store) Persist(ctx context.Context, d models.DraftRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, d)
}

func (s *Store) persist(ctx context.Context, d models.DraftRecord) bool {
	d = d.Normalize()
	if err := s.schema.ValidateDraft(d); err != nil {
		return false
	}
	data, err := json.Marshal(d)
	if err != nil {
		s.logger.WarnContext(ctx, "draft snapshot encode failed", "error", err)
		return false
	}
	if err := s.slot.Write(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "draft snapshot write failed", "error", err)
		return false
	}
	return true
}

// Clear resets the draft to defaults and deletes the snapshot.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = models.Defaults()
	if err := s.slot.Delete(ctx); err != nil {
		s.logger.WarnContext(ctx, "draft snapshot delete failed", "error", err)
	}
}
