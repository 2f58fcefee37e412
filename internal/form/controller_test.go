package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/regform/internal/client"
	"github.com/zjrosen/regform/internal/registration"
)

// === Mock Submitter ===

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) Submit(ctx context.Context, v registration.Values) (client.Response, error) {
	args := m.Called(ctx, v)
	return args.Get(0).(client.Response), args.Error(1)
}

func fillValid(t *testing.T, c *Controller) {
	t.Helper()
	require.NoError(t, c.OnFieldChange(registration.FieldUsername, "abc"))
	require.NoError(t, c.OnFieldChange(registration.FieldFavLanguage, "rust"))
	require.NoError(t, c.OnFieldChange(registration.FieldFavFood, "pizza"))
	require.NoError(t, c.OnFieldChange(registration.FieldAgreement, true))
}

var filled = registration.Values{
	Username:    "abc",
	FavLanguage: "rust",
	FavFood:     "pizza",
	Agreement:   true,
}

func TestNew_Defaults(t *testing.T) {
	c := New(&mockSubmitter{})

	require.Equal(t, registration.DefaultValues(), c.Values())
	require.True(t, c.Errors().Empty(), "no errors are shown before the first edit")
	require.False(t, c.SubmitEnabled())
	require.True(t, c.Outcome().IsZero())
	require.Equal(t, StateIdle, c.State())
}

func TestOnFieldChange_ValidatesOnlyChangedField(t *testing.T) {
	c := New(&mockSubmitter{})

	require.NoError(t, c.OnFieldChange(registration.FieldUsername, "ab"))

	require.Equal(t, "ab", c.Values().Username)
	require.Equal(t, registration.UsernameMin, c.Errors().Username)
	require.Empty(t, c.Errors().FavLanguage, "untouched fields stay clear")
	require.Empty(t, c.Errors().FavFood)
	require.Empty(t, c.Errors().Agreement)
	require.Equal(t, StateEditing, c.State())
}

func TestOnFieldChange_ClearsErrorWhenFixed(t *testing.T) {
	c := New(&mockSubmitter{})

	require.NoError(t, c.OnFieldChange(registration.FieldUsername, ""))
	require.Equal(t, registration.UsernameRequired, c.Errors().Username)

	require.NoError(t, c.OnFieldChange(registration.FieldUsername, "abcd"))
	require.Empty(t, c.Errors().Username)
}

func TestOnFieldChange_AgreementCoercion(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want bool
	}{
		{name: "bool true", raw: true, want: true},
		{name: "bool false", raw: false, want: false},
		{name: "string true", raw: "true", want: true},
		{name: "string 1", raw: "1", want: true},
		{name: "string false", raw: "false", want: false},
		{name: "garbage string", raw: "on", want: false},
		{name: "nil", raw: nil, want: false},
		{name: "int", raw: 1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&mockSubmitter{})
			require.NoError(t, c.OnFieldChange(registration.FieldAgreement, tt.raw))
			require.Equal(t, tt.want, c.Values().Agreement)
			if tt.want {
				require.Empty(t, c.Errors().Agreement)
			} else {
				require.Equal(t, registration.AgreementOptions, c.Errors().Agreement)
			}
		})
	}
}

func TestOnFieldChange_UnknownField(t *testing.T) {
	c := New(&mockSubmitter{})
	err := c.OnFieldChange(registration.Field("email"), "x")
	require.ErrorIs(t, err, ErrUnknownField)
	require.Equal(t, registration.DefaultValues(), c.Values())
	require.Equal(t, StateIdle, c.State())
}

func TestOnFieldChange_FillValidEnablesSubmit(t *testing.T) {
	c := New(&mockSubmitter{})
	fillValid(t, c)

	require.True(t, c.SubmitEnabled())
	require.True(t, c.Errors().Empty())
	require.Equal(t, filled, c.Values())
}

func TestOnFieldChange_InvalidatingDisablesSubmit(t *testing.T) {
	c := New(&mockSubmitter{})
	fillValid(t, c)

	require.NoError(t, c.OnFieldChange(registration.FieldFavFood, "tacos"))
	require.False(t, c.SubmitEnabled())
	require.Equal(t, registration.FavFoodOptions, c.Errors().FavFood)
}

func TestValidateField_Idempotent(t *testing.T) {
	c := New(&mockSubmitter{})
	require.NoError(t, c.OnFieldChange(registration.FieldFavLanguage, "go"))

	first := c.ValidateField(registration.FieldFavLanguage)
	second := c.ValidateField(registration.FieldFavLanguage)
	require.Equal(t, registration.FavLanguageOptions, first)
	require.Equal(t, first, second)
}

func TestSubmit_Success(t *testing.T) {
	sub := &mockSubmitter{}
	sub.On("Submit", mock.Anything, filled).Return(client.Response{Message: "ok", StatusCode: 201}, nil).Once()

	c := New(sub)
	fillValid(t, c)

	outcome, err := c.Submit(context.Background())
	require.NoError(t, err)

	require.Equal(t, "ok", outcome.Success)
	require.Empty(t, outcome.Failure)
	require.Equal(t, outcome, c.Outcome())
	require.Equal(t, registration.DefaultValues(), c.Values(), "form resets after success")
	require.False(t, c.SubmitEnabled())
	require.Equal(t, StateIdle, c.State())
	sub.AssertExpectations(t)
}

func TestSubmit_FailureKeepsValues(t *testing.T) {
	sub := &mockSubmitter{}
	rejected := &client.ServerError{StatusCode: 422, Message: "username is taken"}
	sub.On("Submit", mock.Anything, filled).Return(client.Response{}, rejected).Once()

	c := New(sub)
	fillValid(t, c)

	outcome, err := c.Submit(context.Background())
	require.NoError(t, err, "server failures are reported through the outcome")

	require.Equal(t, "username is taken", outcome.Failure)
	require.Empty(t, outcome.Success)
	require.ErrorIs(t, outcome.Err, rejected)
	require.Equal(t, filled, c.Values(), "values are kept after failure")
	require.True(t, c.SubmitEnabled(), "the user can retry")
	sub.AssertExpectations(t)
}

func TestSubmit_OutcomesReplaceEachOther(t *testing.T) {
	sub := &mockSubmitter{}
	sub.On("Submit", mock.Anything, filled).Return(client.Response{}, errors.New("connection refused")).Once()
	sub.On("Submit", mock.Anything, filled).Return(client.Response{Message: "welcome"}, nil).Once()

	c := New(sub)
	fillValid(t, c)

	outcome, err := c.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, "registration failed: connection refused", outcome.Failure)

	outcome, err = c.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, "welcome", outcome.Success)
	require.Empty(t, outcome.Failure, "success clears the previous failure")
	sub.AssertExpectations(t)
}

func TestSubmit_DisabledSendsNothing(t *testing.T) {
	sub := &mockSubmitter{}
	c := New(sub)
	require.NoError(t, c.OnFieldChange(registration.FieldUsername, "abc"))

	_, err := c.Submit(context.Background())
	require.ErrorIs(t, err, ErrSubmitDisabled)
	sub.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestBeginSubmit_BlocksDoubleSubmit(t *testing.T) {
	c := New(&mockSubmitter{})
	fillValid(t, c)

	values, err := c.BeginSubmit()
	require.NoError(t, err)
	require.Equal(t, filled, values)
	require.True(t, c.Submitting())
	require.False(t, c.SubmitEnabled())

	_, err = c.BeginSubmit()
	require.ErrorIs(t, err, ErrSubmitDisabled)

	c.ResolveSubmit(client.Response{Message: "ok"}, nil)
	require.False(t, c.Submitting())
}

func TestResolveSubmit_LaterResultOverwrites(t *testing.T) {
	c := New(&mockSubmitter{})
	fillValid(t, c)

	_, err := c.BeginSubmit()
	require.NoError(t, err)
	c.ResolveSubmit(client.Response{}, errors.New("timeout"))
	c.ResolveSubmit(client.Response{Message: "late success"}, nil)

	require.Equal(t, "late success", c.Outcome().Success)
	require.Empty(t, c.Outcome().Failure)
}

func TestReset(t *testing.T) {
	c := New(&mockSubmitter{})
	require.NoError(t, c.OnFieldChange(registration.FieldUsername, "a"))
	c.Reset()

	require.Equal(t, registration.DefaultValues(), c.Values())
	require.True(t, c.Errors().Empty())
	require.Equal(t, StateIdle, c.State())
}

func TestState_String(t *testing.T) {
	require.Equal(t, "idle", StateIdle.String())
	require.Equal(t, "editing", StateEditing.String())
	require.Equal(t, "submitting", StateSubmitting.String())
	require.Equal(t, "unknown", State(9).String())
}

// Property: after any sequence of edits, SubmitEnabled is true iff a full
// validation of the current values reports no errors, and every touched
// field's error matches its rule.
func TestController_SubmitEnabledMatchesSchema_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := New(&mockSubmitter{})
		touched := map[registration.Field]bool{}

		steps := rapid.IntRange(1, 20).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			field := rapid.SampledFrom(registration.Fields).Draw(rt, "field")
			var raw any
			switch field {
			case registration.FieldUsername:
				raw = rapid.StringMatching(`[a-z]{0,24}`).Draw(rt, "username")
			case registration.FieldFavLanguage:
				raw = rapid.SampledFrom([]string{"", "javascript", "rust", "python"}).Draw(rt, "lang")
			case registration.FieldFavFood:
				raw = rapid.SampledFrom([]string{"", "broccoli", "spaghetti", "pizza", "sushi"}).Draw(rt, "food")
			case registration.FieldAgreement:
				raw = rapid.Bool().Draw(rt, "agreement")
			}
			require.NoError(rt, c.OnFieldChange(field, raw))
			touched[field] = true
		}

		full := registration.Validate(c.Values())
		require.Equal(rt, full.Empty(), c.SubmitEnabled())
		for f := range touched {
			require.Equal(rt, full.Get(f), c.Errors().Get(f))
		}
	})
}

func TestSend_DoesNotTouchState(t *testing.T) {
	s := &mockSubmitter{}
	s.On("Submit", mock.Anything, filled).Return(client.Response{Message: "ok"}, nil).Once()

	c := New(s)
	fillValid(t, c)

	resp, err := c.Send(context.Background(), filled)
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Message)
	require.Equal(t, filled, c.Values())
	require.True(t, c.Outcome().IsZero())
	require.Equal(t, StateEditing, c.State())
	s.AssertExpectations(t)
}

func TestResolveSubmit_EmptyMessageStillSucceeds(t *testing.T) {
	c := New(&mockSubmitter{})
	fillValid(t, c)
	_, err := c.BeginSubmit()
	require.NoError(t, err)

	outcome := c.ResolveSubmit(client.Response{StatusCode: 200}, nil)

	require.Equal(t, DefaultSuccessMessage, outcome.Success)
	require.False(t, outcome.IsZero())
	require.Equal(t, registration.DefaultValues(), c.Values())
}
