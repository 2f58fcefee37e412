package tracing

// Span names.
const (
	SpanSubmit = "registration.submit"
	SpanServe  = "registration.serve"
)

// Span attribute keys.
const (
	AttrRequestID   = "registration.request_id"
	AttrEndpoint    = "registration.endpoint"
	AttrUsername    = "registration.username"
	AttrStatusCode  = "http.status_code"
	AttrOutcome     = "registration.outcome"
	AttrErrorReason = "error.message"
)

// Outcome attribute values.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)
