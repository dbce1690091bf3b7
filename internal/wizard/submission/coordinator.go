// Package submission performs the final, single-shot registry submission.
package submission

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"vehiclereg/internal/registration/models"
	"vehiclereg/internal/registration/schema"
	"vehiclereg/internal/wizard/metrics"
	"vehiclereg/internal/wizard/ports"
	dErrors "vehiclereg/pkg/domain-errors"
	"vehiclereg/pkg/requestcontext"
)

// MessageSubmitFailed is shown for failures not attributable to a field.
const MessageSubmitFailed = "We could not submit your registration. Please try again."

// DraftStore is the slice of the draft store the coordinator needs.
type DraftStore interface {
	Current() models.DraftRecord
	Clear(ctx context.Context)
}

// Coordinator validates the complete draft and submits it exactly once.
// It never retries: creation is not idempotent.
type Coordinator struct {
	submitter ports.Submitter
	schema    *schema.Schema
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// New creates a Coordinator. submitter and sch are required.
func New(submitter ports.Submitter, sch *schema.Schema, opts ...Option) (*Coordinator, error) {
	if submitter == nil {
		return nil, errors.New("submitter is required")
	}
	if sch == nil {
		return nil, errors.New("schema is required")
	}
	c := &Coordinator{submitter: submitter, schema: sch, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Submit pre-checks the store's draft against the full schema, submits it
// and clears the store on success.
//
// Failures leave the draft intact and come back as:
//   - dErrors.FieldErrors when the pre-check or the registry rejects fields
//   - a CodeConflict *dErrors.Error with Field for a duplicate found late
//   - CodeUnavailable for anything else
func (c *Coordinator) Submit(ctx context.Context, store DraftStore) (models.SubmissionReceipt, error) {
	d := store.Current().Normalize()
	if err := c.schema.ValidateDraft(d); err != nil {
		c.metrics.ObserveSubmission(metrics.OutcomeInvalid, time.Now())
		return models.SubmissionReceipt{}, err
	}

	start := time.Now()
	receipt, err := c.submitter.Submit(ctx, d)
	if err != nil {
		return models.SubmissionReceipt{}, c.classify(ctx, err, start)
	}
	if receipt.ID == "" {
		c.metrics.ObserveSubmission(metrics.OutcomeNetwork, start)
		c.logger.WarnContext(ctx, "registry accepted submission without an id",
			"request_id", requestcontext.RequestID(ctx),
		)
		return models.SubmissionReceipt{}, dErrors.New(dErrors.CodeUnavailable, MessageSubmitFailed)
	}

	c.metrics.ObserveSubmission(metrics.OutcomeSubmitted, start)
	store.Clear(ctx)
	c.logger.InfoContext(ctx, "registration submitted",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", requestcontext.WizardSessionID(ctx).String(),
		"applicant_id", receipt.ID,
	)
	return receipt, nil
}

func (c *Coordinator) classify(ctx context.Context, err error, start time.Time) error {
	var fe dErrors.FieldErrors
	if errors.As(err, &fe) && len(fe) > 0 {
		c.metrics.ObserveSubmission(metrics.OutcomeInvalid, start)
		return fe
	}
	if field, ok := dErrors.FieldOf(err); ok && dErrors.HasCode(err, dErrors.CodeConflict) {
		c.metrics.ObserveSubmission(metrics.OutcomeConflict, start)
		c.logger.InfoContext(ctx, "duplicate detected at submission",
			"request_id", requestcontext.RequestID(ctx),
			"field", field,
		)
		return err
	}
	c.metrics.ObserveSubmission(metrics.OutcomeNetwork, start)
	c.logger.WarnContext(ctx, "registration submission failed",
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	return dErrors.Wrap(err, dErrors.CodeUnavailable, MessageSubmitFailed)
}
