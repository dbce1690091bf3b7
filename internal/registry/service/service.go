// Package service implements the reference registry: server-side validation
// of submitted drafts, duplicate detection by contact identifier, and audit
// trail emission.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"vehiclereg/internal/registration/models"
	"vehiclereg/internal/registration/schema"
	"vehiclereg/internal/registry/metrics"
	dErrors "vehiclereg/pkg/domain-errors"
	"vehiclereg/pkg/platform/audit"
	"vehiclereg/pkg/platform/sentinel"
	"vehiclereg/pkg/requestcontext"
)

const (
	MessagePhoneTaken = "This phone number is already registered"
	MessageEmailTaken = "This email address is already registered"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// Store persists registrations.
type Store interface {
	Save(ctx context.Context, reg *models.Registration) error
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	FindDuplicate(ctx context.Context, phone, email string) (string, error)
}

// Service is the registry's domain logic.
type Service struct {
	store     Store
	schema    *schema.Schema
	publisher audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	newID     func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAuditPublisher sets the audit sink. Without one, events are dropped.
func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithIDGenerator overrides applicant id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// New creates a Service. The schema's catalog decides which vehicle types
// are accepted.
func New(store Store, sch *schema.Schema, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("registration store is required")
	}
	if sch == nil {
		return nil, errors.New("schema is required")
	}
	s := &Service{
		store:  store,
		schema: sch,
		logger: slog.Default(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Catalog returns the vehicles registrations may select.
func (s *Service) Catalog(_ context.Context) models.Catalog {
	return s.schema.Catalog()
}

// CheckUnique reports whether the query's identifiers are free. An empty
// query is unique.
func (s *Service) CheckUnique(ctx context.Context, q models.UniquenessQuery) (models.UniquenessResult, error) {
	q.PrimaryPhoneNumber = strings.TrimSpace(q.PrimaryPhoneNumber)
	q.EmailAddress = strings.TrimSpace(q.EmailAddress)
	if q.IsEmpty() {
		return models.UniquenessResult{IsUnique: true}, nil
	}

	field, err := s.store.FindDuplicate(ctx, q.PrimaryPhoneNumber, q.EmailAddress)
	if err != nil {
		return models.UniquenessResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check uniqueness")
	}
	s.metrics.IncrementUniquenessCheck(field == "")
	s.emit(ctx, audit.Event{Action: audit.ActionUniquenessChecked, Field: field})
	if field == "" {
		return models.UniquenessResult{IsUnique: true}, nil
	}

	s.metrics.IncrementDuplicate(field, "check")
	return models.UniquenessResult{
		IsUnique:       false,
		DuplicateField: field,
		Message:        duplicateMessage(field),
	}, nil
}

// Register validates d against the full schema and stores it under a new
// applicant id. Invalid drafts yield dErrors.FieldErrors; a taken phone
// number or email address yields a conflict attributed to that field.
func (s *Service) Register(ctx context.Context, d models.DraftRecord) (*models.Registration, error) {
	d = d.Normalize()
	if err := s.schema.ValidateDraft(d); err != nil {
		s.metrics.IncrementRejected()
		s.emit(ctx, audit.Event{Action: audit.ActionRegistrationRejected, Reason: "validation"})
		return nil, err
	}

	field, err := s.store.FindDuplicate(ctx, d.PrimaryPhoneNumber, d.Email())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check uniqueness")
	}
	if field != "" {
		return nil, s.duplicate(ctx, field)
	}

	reg := &models.Registration{
		ID:          s.newID(),
		CreatedAt:   requestcontext.Now(ctx),
		DraftRecord: d,
	}
	if err := s.store.Save(ctx, reg); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a race with a concurrent submission; attribute it now.
			field, findErr := s.store.FindDuplicate(ctx, d.PrimaryPhoneNumber, d.Email())
			if findErr == nil && field != "" {
				return nil, s.duplicate(ctx, field)
			}
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "registration already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save registration")
	}

	s.metrics.IncrementCreated()
	s.emit(ctx, audit.Event{Action: audit.ActionRegistrationCreated, Subject: reg.ID})
	s.logger.InfoContext(ctx, "registration created",
		"request_id", requestcontext.RequestID(ctx),
		"applicant_id", reg.ID,
		"vehicle_type", reg.PreferredVehicleType,
	)
	return reg, nil
}

// Registration returns a stored registration.
func (s *Service) Registration(ctx context.Context, id string) (*models.Registration, error) {
	reg, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration")
	}
	return reg, nil
}

func (s *Service) duplicate(ctx context.Context, field string) error {
	s.metrics.IncrementDuplicate(field, "submit")
	s.emit(ctx, audit.Event{Action: audit.ActionDuplicateDetected, Field: field})
	s.logger.InfoContext(ctx, "duplicate registration",
		"request_id", requestcontext.RequestID(ctx),
		"field", field,
	)
	return dErrors.Conflict(field, duplicateMessage(field))
}

// emit never fails the caller; sink errors are logged.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.publisher == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	event.ClientIP = requestcontext.ClientIP(ctx)
	event = event.Normalize(requestcontext.Now(ctx))
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(event.Action),
			"error", err,
		)
	}
}

func duplicateMessage(field string) string {
	if field == models.FieldEmailAddress {
		return MessageEmailTaken
	}
	return MessagePhoneTaken
}
