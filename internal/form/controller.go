// Package form implements the registration form controller: it owns the form
// values, per-field validation errors, the submit-enabled flag and the last
// server outcome.
//
// The controller is not safe for concurrent use. The Bubble Tea program calls
// it only from its event loop; long-running work (the HTTP request) happens in
// a tea.Cmd and is applied back through ResolveSubmit.
package form

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/zjrosen/regform/internal/client"
	"github.com/zjrosen/regform/internal/log"
	"github.com/zjrosen/regform/internal/registration"
)

var (
	// ErrSubmitDisabled is returned when Submit is called while the form is
	// invalid or a submission is already in flight.
	ErrSubmitDisabled = errors.New("submit is disabled")

	// ErrUnknownField is returned for change events naming no form field.
	ErrUnknownField = errors.New("unknown field")
)

// DefaultSuccessMessage is shown when the server accepts a registration
// without a message.
const DefaultSuccessMessage = "registration succeeded"

// State is the controller's position in the submit lifecycle.
type State int

const (
	StateIdle State = iota
	StateEditing
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Controller holds the registration form state.
type Controller struct {
	submitter client.Submitter
	schema    registration.Schema

	values        registration.Values
	errors        registration.Errors
	submitEnabled bool
	outcome       registration.Outcome
	state         State
}

// New creates a controller with default values that submits through s.
func New(s client.Submitter) *Controller {
	return NewWithSchema(s, registration.DefaultSchema)
}

// NewWithSchema creates a controller validating against schema.
func NewWithSchema(s client.Submitter, schema registration.Schema) *Controller {
	c := &Controller{
		submitter: s,
		schema:    schema,
		values:    registration.DefaultValues(),
	}
	c.recheck()
	return c
}

// Values returns the current form values.
func (c *Controller) Values() registration.Values { return c.values }

// Errors returns the current per-field errors.
func (c *Controller) Errors() registration.Errors { return c.errors }

// Outcome returns the result of the last completed submission.
func (c *Controller) Outcome() registration.Outcome { return c.outcome }

// State returns the lifecycle state.
func (c *Controller) State() State { return c.state }

// Submitting reports whether a submission is in flight.
func (c *Controller) Submitting() bool { return c.state == StateSubmitting }

// SubmitEnabled reports whether every field passes validation and no
// submission is in flight.
func (c *Controller) SubmitEnabled() bool {
	return c.submitEnabled && c.state != StateSubmitting
}

// OnFieldChange stores raw into field, validates that field and rechecks the
// whole form. The agreement field is coerced to a bool: a bool is used as is,
// a string goes through strconv.ParseBool and anything else is false. Other
// fields store raw as a string.
func (c *Controller) OnFieldChange(field registration.Field, raw any) error {
	switch field {
	case registration.FieldUsername:
		c.values.Username = asString(raw)
	case registration.FieldFavLanguage:
		c.values.FavLanguage = asString(raw)
	case registration.FieldFavFood:
		c.values.FavFood = asString(raw)
	case registration.FieldAgreement:
		c.values.Agreement = asBool(raw)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	msg := c.schema.ValidateField(field, c.values)
	c.errors = c.errors.Set(field, msg)
	if c.state == StateIdle {
		c.state = StateEditing
	}
	c.recheck()

	log.Debug(log.CatForm, "field changed", "field", field, "error", msg, "submit_enabled", c.submitEnabled)
	return nil
}

// ValidateField revalidates a single field against its current value and
// records the result.
func (c *Controller) ValidateField(field registration.Field) string {
	msg := c.schema.ValidateField(field, c.values)
	c.errors = c.errors.Set(field, msg)
	return msg
}

// BeginSubmit moves the controller into the submitting state and returns the
// values to send. It fails with ErrSubmitDisabled when the form is invalid or
// a submission is already in flight.
func (c *Controller) BeginSubmit() (registration.Values, error) {
	if !c.SubmitEnabled() {
		return registration.Values{}, ErrSubmitDisabled
	}
	c.state = StateSubmitting
	log.Info(log.CatForm, "submitting", "username", c.values.Username)
	return c.values, nil
}

// ResolveSubmit applies the result of a submission. On success the outcome
// carries the server message, or DefaultSuccessMessage when the server sent
// none, and the values reset to their defaults; on
// failure the outcome carries a failure message and the values are kept.
func (c *Controller) ResolveSubmit(resp client.Response, err error) registration.Outcome {
	if err != nil {
		c.outcome = registration.Failed(client.FailureMessage(err), err)
		log.ErrorErr(log.CatForm, "submission failed", err)
	} else {
		msg := resp.Message
		if msg == "" {
			msg = DefaultSuccessMessage
		}
		c.outcome = registration.Succeeded(msg)
		c.values = registration.DefaultValues()
		log.Info(log.CatForm, "submission succeeded", "message", msg, "status", resp.StatusCode)
	}
	c.state = StateIdle
	c.recheck()
	return c.outcome
}

// Send posts v through the controller's submitter without touching controller
// state. It is safe to call from a tea.Cmd goroutine; apply the result with
// ResolveSubmit on the event loop.
func (c *Controller) Send(ctx context.Context, v registration.Values) (client.Response, error) {
	return c.submitter.Submit(ctx, v)
}

// Submit sends the current values and waits for the result. It returns
// ErrSubmitDisabled without sending anything when the form cannot be
// submitted; server and transport failures are reported through the returned
// outcome, not the error.
func (c *Controller) Submit(ctx context.Context) (registration.Outcome, error) {
	values, err := c.BeginSubmit()
	if err != nil {
		return c.outcome, err
	}
	resp, err := c.Send(ctx, values)
	return c.ResolveSubmit(resp, err), nil
}

// Reset restores default values and clears errors and the outcome.
func (c *Controller) Reset() {
	c.values = registration.DefaultValues()
	c.errors = registration.Errors{}
	c.outcome = registration.Outcome{}
	c.state = StateIdle
	c.recheck()
}

func (c *Controller) recheck() {
	c.submitEnabled = c.schema.IsValid(c.values)
}

func asString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case nil:
		return ""
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func asBool(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	default:
		return false
	}
}
