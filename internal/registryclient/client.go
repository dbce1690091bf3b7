// Package registryclient talks to the registration registry over HTTP and
// implements the wizard's uniqueness, submission and catalog ports.
//
// Every response is classified before it leaves this package: rejected
// fields become dErrors.FieldErrors, duplicates become field-attributed
// conflicts, and everything else (transport failures, unexpected statuses,
// undecodable bodies) becomes CodeUnavailable.
package registryclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"vehiclereg/internal/registration/models"
	dErrors "vehiclereg/pkg/domain-errors"
	"vehiclereg/pkg/platform/circuit"
	"vehiclereg/pkg/platform/sentinel"
	"vehiclereg/pkg/requestcontext"
)

const (
	tracerName        = "vehiclereg/registryclient"
	maxResponseBytes  = 1 << 20
	requestIDHeader   = "X-Request-ID"
	pathCheckUnique   = "/api/registrations/check-unique"
	pathRegistrations = "/api/registrations"
	pathVehicles      = "/api/vehicles"
)

// Client calls the registry API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tracer  trace.Tracer
	logger  *slog.Logger
	breaker *circuit.Breaker
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// WithBreaker fails calls fast while the registry keeps failing.
func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) {
		cl.breaker = b
	}
}

// New creates a Client for the registry at baseURL. timeout bounds every
// call; the registry API has no retries.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid registry URL %q", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		tracer:  otel.Tracer(tracerName),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type userEnvelope struct {
	User struct {
		ID string `json:"id"`
	} `json:"user"`
}

// errorEnvelope covers both registry error shapes: the conflict body with
// duplicateField and the validation body with fields.
type errorEnvelope struct {
	Error          string              `json:"error"`
	DuplicateField string              `json:"duplicateField"`
	Message        string              `json:"message"`
	Fields         dErrors.FieldErrors `json:"fields"`
}

// CheckUnique asks whether the query's identifiers are already registered.
func (c *Client) CheckUnique(ctx context.Context, q models.UniquenessQuery) (models.UniquenessResult, error) {
	ctx, span := c.start(ctx, "registry.CheckUnique")
	defer span.End()

	var result models.UniquenessResult
	status, body, err := c.do(ctx, http.MethodPost, pathCheckUnique, q)
	if err != nil {
		return result, c.fail(span, err)
	}
	if status != http.StatusOK {
		return result, c.fail(span, unexpectedStatus(status))
	}
	if err := decode(body, &result); err != nil {
		return models.UniquenessResult{}, c.fail(span, err)
	}
	span.SetAttributes(attribute.Bool("registry.unique", result.IsUnique))
	return result, nil
}

// Submit sends a complete draft and returns the assigned applicant id.
func (c *Client) Submit(ctx context.Context, d models.DraftRecord) (models.SubmissionReceipt, error) {
	ctx, span := c.start(ctx, "registry.Submit")
	defer span.End()

	status, body, err := c.do(ctx, http.MethodPost, pathRegistrations, d)
	if err != nil {
		return models.SubmissionReceipt{}, c.fail(span, err)
	}

	switch status {
	case http.StatusOK, http.StatusCreated:
		var env userEnvelope
		if err := decode(body, &env); err != nil {
			return models.SubmissionReceipt{}, c.fail(span, err)
		}
		if env.User.ID == "" {
			return models.SubmissionReceipt{}, c.fail(span, fmt.Errorf("%w: response carries no user id", sentinel.ErrCorrupt))
		}
		span.SetAttributes(attribute.String("registry.applicant_id", env.User.ID))
		return models.SubmissionReceipt{ID: env.User.ID}, nil

	case http.StatusConflict:
		var env errorEnvelope
		if err := decode(body, &env); err == nil && isContactField(env.DuplicateField) {
			span.SetAttributes(attribute.String("registry.duplicate_field", env.DuplicateField))
			span.SetStatus(codes.Error, "duplicate")
			return models.SubmissionReceipt{}, dErrors.Conflict(env.DuplicateField, conflictMessage(env))
		}
		return models.SubmissionReceipt{}, c.fail(span, unexpectedStatus(status))

	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		var env errorEnvelope
		if err := decode(body, &env); err == nil && len(env.Fields) > 0 {
			span.SetStatus(codes.Error, "rejected fields")
			return models.SubmissionReceipt{}, env.Fields
		}
		return models.SubmissionReceipt{}, c.fail(span, unexpectedStatus(status))

	default:
		return models.SubmissionReceipt{}, c.fail(span, unexpectedStatus(status))
	}
}

// Catalog lists the selectable vehicles in registry order.
func (c *Client) Catalog(ctx context.Context) (models.Catalog, error) {
	ctx, span := c.start(ctx, "registry.Catalog")
	defer span.End()

	status, body, err := c.do(ctx, http.MethodGet, pathVehicles, nil)
	if err != nil {
		return nil, c.fail(span, err)
	}
	if status != http.StatusOK {
		return nil, c.fail(span, unexpectedStatus(status))
	}
	var catalog models.Catalog
	if err := decode(body, &catalog); err != nil {
		return nil, c.fail(span, err)
	}
	span.SetAttributes(attribute.Int("registry.catalog_size", len(catalog)))
	return catalog, nil
}

// Registration re-fetches a submitted registration by applicant id.
func (c *Client) Registration(ctx context.Context, applicantID string) (*models.Registration, error) {
	ctx, span := c.start(ctx, "registry.Registration")
	defer span.End()

	status, body, err := c.do(ctx, http.MethodGet, pathRegistrations+"/"+url.PathEscape(applicantID), nil)
	if err != nil {
		return nil, c.fail(span, err)
	}
	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		span.SetStatus(codes.Error, "not found")
		return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
	default:
		return nil, c.fail(span, unexpectedStatus(status))
	}
	var reg models.Registration
	if err := decode(body, &reg); err != nil {
		return nil, c.fail(span, err)
	}
	return &reg, nil
}

func (c *Client) start(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("registry.host", c.baseURL.Host)),
	)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	if c.breaker != nil && !c.breaker.Allow() {
		return 0, nil, fmt.Errorf("%w: circuit %s open", sentinel.ErrUnavailable, c.breaker.Name())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		req.Header.Set(requestIDHeader, requestID)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		c.record(ctx, false)
		return 0, nil, fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.record(ctx, false)
		return 0, nil, fmt.Errorf("%w: read response: %w", sentinel.ErrUnavailable, err)
	}
	c.record(ctx, resp.StatusCode < http.StatusInternalServerError)
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	return resp.StatusCode, data, nil
}

// record feeds the breaker. Any reply below 500 counts as the registry
// being reachable, including rejections.
func (c *Client) record(ctx context.Context, ok bool) {
	if c.breaker == nil {
		return
	}
	var change circuit.StateChange
	if ok {
		_, change = c.breaker.RecordSuccess()
	} else {
		_, change = c.breaker.RecordFailure()
	}
	switch {
	case change.Opened:
		c.logger.WarnContext(ctx, "registry circuit opened", "circuit", c.breaker.Name())
	case change.Closed:
		c.logger.InfoContext(ctx, "registry circuit closed", "circuit", c.breaker.Name())
	}
}

// fail records err on the span and converts it to CodeUnavailable.
func (c *Client) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.logger.Debug("registry call failed", "error", err)
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "registry unavailable")
}

func decode(body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: decode response: %w", sentinel.ErrCorrupt, err)
	}
	return nil
}

func unexpectedStatus(status int) error {
	return fmt.Errorf("%w: unexpected status %d", sentinel.ErrUnavailable, status)
}

func isContactField(field string) bool {
	return field == models.FieldPrimaryPhoneNumber || field == models.FieldEmailAddress
}

func conflictMessage(env errorEnvelope) string {
	if env.Message != "" {
		return env.Message
	}
	if env.DuplicateField == models.FieldEmailAddress {
		return "This email address is already registered"
	}
	return "This phone number is already registered"
}
