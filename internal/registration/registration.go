// Package registration defines the registration form's values, field
// identifiers and the schema each field is validated against.
package registration

// Field identifies a single form field. Values match the JSON keys sent to
// the registration endpoint.
type Field string

const (
	FieldUsername    Field = "username"
	FieldFavLanguage Field = "favLanguage"
	FieldFavFood     Field = "favFood"
	FieldAgreement   Field = "agreement"
)

// Fields lists every form field in display order.
var Fields = []Field{FieldUsername, FieldFavLanguage, FieldFavFood, FieldAgreement}

// Values holds the current form values.
type Values struct {
	Username    string `json:"username"`
	FavLanguage string `json:"favLanguage"`
	FavFood     string `json:"favFood"`
	Agreement   bool   `json:"agreement"`
}

// DefaultValues returns the empty form.
func DefaultValues() Values {
	return Values{}
}

// Errors holds one validation message per field. An empty string means the
// field is valid.
type Errors struct {
	Username    string `json:"username"`
	FavLanguage string `json:"favLanguage"`
	FavFood     string `json:"favFood"`
	Agreement   string `json:"agreement"`
}

// Get returns the message for a field.
func (e Errors) Get(f Field) string {
	switch f {
	case FieldUsername:
		return e.Username
	case FieldFavLanguage:
		return e.FavLanguage
	case FieldFavFood:
		return e.FavFood
	case FieldAgreement:
		return e.Agreement
	}
	return ""
}

// Set returns a copy of e with the message for f replaced.
func (e Errors) Set(f Field, msg string) Errors {
	switch f {
	case FieldUsername:
		e.Username = msg
	case FieldFavLanguage:
		e.FavLanguage = msg
	case FieldFavFood:
		e.FavFood = msg
	case FieldAgreement:
		e.Agreement = msg
	}
	return e
}

// Empty reports whether no field has an error.
func (e Errors) Empty() bool {
	return e == Errors{}
}

// First returns the first non-empty message in field order.
func (e Errors) First() (Field, string, bool) {
	for _, f := range Fields {
		if msg := e.Get(f); msg != "" {
			return f, msg, true
		}
	}
	return "", "", false
}

// Outcome is the result of the last submission attempt. At most one of
// Success and Failure is non-empty.
type Outcome struct {
	Success string
	Failure string

	// Err is the error behind Failure, kept for logging.
	Err error
}

// Succeeded returns an outcome carrying the server's success message.
func Succeeded(msg string) Outcome {
	return Outcome{Success: msg}
}

// Failed returns an outcome carrying a failure message.
func Failed(msg string, err error) Outcome {
	return Outcome{Failure: msg, Err: err}
}

// IsZero reports whether no submission has completed yet.
func (o Outcome) IsZero() bool {
	return o.Success == "" && o.Failure == ""
}
