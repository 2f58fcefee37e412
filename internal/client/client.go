// Package client submits registration values to the registration endpoint.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"resty.dev/v3"

	"github.com/zjrosen/regform/internal/log"
	"github.com/zjrosen/regform/internal/registration"
	"github.com/zjrosen/regform/internal/tracing"
)

// DefaultEndpoint is the public registration endpoint.
const DefaultEndpoint = "https://webapis.bloomtechdev.com/registration"

// DefaultTimeout bounds a single submission.
const DefaultTimeout = 10 * time.Second

// RequestIDHeader carries the per-submission request id.
const RequestIDHeader = "X-Request-ID"

// Submitter sends form values to a registration endpoint.
type Submitter interface {
	Submit(ctx context.Context, v registration.Values) (Response, error)
}

// Response is a successful registration response.
type Response struct {
	Message    string
	StatusCode int
	RequestID  string
}

// ServerError is returned when the endpoint answers with a non-2xx status.
type ServerError struct {
	StatusCode int
	Message    string // from the response body, may be empty
	RequestID  string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("registration rejected (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("registration rejected (%d)", e.StatusCode)
}

// FailureMessage derives the message shown to the user for a failed
// submission.
func FailureMessage(err error) string {
	var serr *ServerError
	if errors.As(err, &serr) {
		if serr.Message != "" {
			return serr.Message
		}
		return "registration failed: " + http.StatusText(serr.StatusCode)
	}
	if err == nil {
		return "registration failed"
	}
	return "registration failed: " + err.Error()
}

type successBody struct {
	Message string `json:"message"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Config configures an HTTPClient.
type Config struct {
	Endpoint  string
	Timeout   time.Duration
	UserAgent string

	// Tracer records one span per submission. Defaults to a no-op tracer.
	Tracer trace.Tracer
}

// HTTPClient is a Submitter backed by resty.
type HTTPClient struct {
	endpoint string
	rc       *resty.Client
	tracer   trace.Tracer
}

var _ Submitter = (*HTTPClient)(nil)

// New creates an HTTPClient. Empty config fields take their defaults.
func New(cfg Config) *HTTPClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "regform"
	}
	if cfg.Tracer == nil {
		cfg.Tracer = tracing.Noop().Tracer()
	}

	rc := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")

	return &HTTPClient{
		endpoint: cfg.Endpoint,
		rc:       rc,
		tracer:   cfg.Tracer,
	}
}

// Endpoint returns the URL submissions are posted to.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

// Close releases the underlying transport.
func (c *HTTPClient) Close() error {
	return c.rc.Close()
}

// Submit posts v as JSON. A non-2xx answer returns a *ServerError.
func (c *HTTPClient) Submit(ctx context.Context, v registration.Values) (Response, error) {
	requestID := uuid.NewString()

	ctx, span := c.tracer.Start(ctx, tracing.SpanSubmit, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String(tracing.AttrRequestID, requestID),
		attribute.String(tracing.AttrEndpoint, c.endpoint),
		attribute.String(tracing.AttrUsername, v.Username),
	)

	log.Debug(log.CatHTTP, "submitting registration", "endpoint", c.endpoint, "request_id", requestID)

	res, err := c.rc.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, requestID).
		SetHeader("Content-Type", "application/json").
		SetBody(v).
		SetResult(&successBody{}).
		SetError(&errorBody{}).
		Post(c.endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(tracing.AttrOutcome, tracing.OutcomeError))
		log.ErrorErr(log.CatHTTP, "registration request failed", err, "request_id", requestID)
		return Response{}, fmt.Errorf("posting registration: %w", err)
	}

	status := res.StatusCode()
	span.SetAttributes(attribute.Int(tracing.AttrStatusCode, status))

	if res.IsError() || status < 200 || status > 299 {
		serr := &ServerError{StatusCode: status, RequestID: requestID}
		if body, ok := res.Error().(*errorBody); ok && body != nil {
			serr.Message = body.Message
			if serr.Message == "" {
				serr.Message = body.Error
			}
		}
		span.SetStatus(codes.Error, serr.Error())
		span.SetAttributes(
			attribute.String(tracing.AttrOutcome, tracing.OutcomeRejected),
			attribute.String(tracing.AttrErrorReason, serr.Message),
		)
		log.Warn(log.CatHTTP, "registration rejected", "status", status, "message", serr.Message, "request_id", requestID)
		return Response{}, serr
	}

	out := Response{StatusCode: status, RequestID: requestID}
	if body, ok := res.Result().(*successBody); ok && body != nil {
		out.Message = body.Message
	}
	span.SetStatus(codes.Ok, "")
	span.SetAttributes(attribute.String(tracing.AttrOutcome, tracing.OutcomeSuccess))
	log.Info(log.CatHTTP, "registration accepted", "status", status, "request_id", requestID)
	return out, nil
}
