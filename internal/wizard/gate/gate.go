// Package gate guards the step 1 transition with a registry uniqueness check.
package gate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"vehiclereg/internal/registration/models"
	"vehiclereg/internal/wizard/metrics"
	"vehiclereg/internal/wizard/ports"
	dErrors "vehiclereg/pkg/domain-errors"
	"vehiclereg/pkg/requestcontext"
)

// Default messages used when the registry supplies none.
const (
	MessageDuplicatePhone = "This phone number is already registered"
	MessageDuplicateEmail = "This email address is already registered"
	MessageNetwork        = "We could not verify your contact details. Please try again."
)

// Gate checks contact identifiers against the registry.
type Gate struct {
	checker ports.UniquenessChecker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

// New creates a Gate. checker is required.
func New(checker ports.UniquenessChecker, opts ...Option) (*Gate, error) {
	if checker == nil {
		return nil, errors.New("uniqueness checker is required")
	}
	g := &Gate{checker: checker, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Check queries the registry with whichever identifiers are non-empty and
// returns nil when they are unique. A duplicate yields a conflict attached
// to the reported field; any other failure yields CodeUnavailable with no
// field. With no identifiers the check is skipped.
func (g *Gate) Check(ctx context.Context, phone, email string) error {
	q := models.UniquenessQuery{
		PrimaryPhoneNumber: strings.TrimSpace(phone),
		EmailAddress:       strings.TrimSpace(email),
	}
	if q.IsEmpty() {
		g.metrics.ObserveGate(metrics.OutcomeSkipped, time.Now())
		return nil
	}

	start := time.Now()
	result, err := g.checker.CheckUnique(ctx, q)
	if err != nil {
		g.metrics.ObserveGate(metrics.OutcomeNetwork, start)
		g.logger.WarnContext(ctx, "uniqueness check failed",
			"request_id", requestcontext.RequestID(ctx),
			"session_id", requestcontext.WizardSessionID(ctx).String(),
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, MessageNetwork)
	}
	if result.IsUnique {
		g.metrics.ObserveGate(metrics.OutcomeUnique, start)
		return nil
	}

	g.metrics.ObserveGate(metrics.OutcomeConflict, start)
	field := duplicateField(result.DuplicateField, q)
	message := result.Message
	if message == "" || field != result.DuplicateField {
		message = defaultMessage(field)
	}
	g.logger.InfoContext(ctx, "duplicate contact identifier",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", requestcontext.WizardSessionID(ctx).String(),
		"field", field,
	)
	return dErrors.Conflict(field, message)
}

// duplicateField trusts the registry when it names a field that was part of
// the query. Otherwise the phone number takes the blame if it was queried.
func duplicateField(reported string, q models.UniquenessQuery) string {
	switch {
	case reported == models.FieldPrimaryPhoneNumber && q.PrimaryPhoneNumber != "":
		return reported
	case reported == models.FieldEmailAddress && q.EmailAddress != "":
		return reported
	}
	if q.PrimaryPhoneNumber != "" {
		return models.FieldPrimaryPhoneNumber
	}
	return models.FieldEmailAddress
}

func defaultMessage(field string) string {
	if field == models.FieldEmailAddress {
		return MessageDuplicateEmail
	}
	return MessageDuplicatePhone
}
