package registration

import (
	"slices"

	"github.com/rivo/uniseg"
)

// Validation messages.
const (
	UsernameRequired = "username is required"
	UsernameMin      = "username must be at least 3 characters"
	UsernameMax      = "username cannot exceed 20 characters"

	FavLanguageRequired = "favLanguage is required"
	FavLanguageOptions  = "favLanguage must be either javascript or rust"

	FavFoodRequired = "favFood is required"
	FavFoodOptions  = "favFood must be either broccoli, spaghetti or pizza"

	AgreementRequired = "agreement is required"
	AgreementOptions  = "agreement must be accepted"
)

// Option is a selectable value for an enumerated field.
type Option struct {
	Label string
	Value string
}

// LanguageOptions are the accepted favLanguage values.
var LanguageOptions = []Option{
	{Label: "JavaScript", Value: "javascript"},
	{Label: "Rust", Value: "rust"},
}

// FoodOptions are the accepted favFood values, in display order.
var FoodOptions = []Option{
	{Label: "Pizza", Value: "pizza"},
	{Label: "Spaghetti", Value: "spaghetti"},
	{Label: "Broccoli", Value: "broccoli"},
}

// StringRule validates a text value. Checks run in order: required, min
// length, max length, allowed values. The first failing check wins.
type StringRule struct {
	RequiredMsg string

	Min    int // grapheme clusters; 0 disables
	MinMsg string
	Max    int // grapheme clusters; 0 disables
	MaxMsg string

	OneOf    []string
	OneOfMsg string
}

// Check returns the message for the first failing check, or "".
func (r StringRule) Check(s string) string {
	if s == "" {
		return r.RequiredMsg
	}
	n := uniseg.GraphemeClusterCount(s)
	if r.Min > 0 && n < r.Min {
		return r.MinMsg
	}
	if r.Max > 0 && n > r.Max {
		return r.MaxMsg
	}
	if len(r.OneOf) > 0 && !slices.Contains(r.OneOf, s) {
		return r.OneOfMsg
	}
	return ""
}

// BoolRule requires a boolean to equal Want.
type BoolRule struct {
	Want bool
	Msg  string
}

// Check returns Msg when b differs from Want.
func (r BoolRule) Check(b bool) string {
	if b != r.Want {
		return r.Msg
	}
	return ""
}

// Schema is the full rule set for the registration form.
type Schema struct {
	Username    StringRule
	FavLanguage StringRule
	FavFood     StringRule
	Agreement   BoolRule
}

// DefaultSchema is the registration form's rule set.
var DefaultSchema = Schema{
	Username: StringRule{
		RequiredMsg: UsernameRequired,
		Min:         3,
		MinMsg:      UsernameMin,
		Max:         20,
		MaxMsg:      UsernameMax,
	},
	FavLanguage: StringRule{
		RequiredMsg: FavLanguageRequired,
		OneOf:       optionValues(LanguageOptions),
		OneOfMsg:    FavLanguageOptions,
	},
	FavFood: StringRule{
		RequiredMsg: FavFoodRequired,
		OneOf:       optionValues(FoodOptions),
		OneOfMsg:    FavFoodOptions,
	},
	Agreement: BoolRule{Want: true, Msg: AgreementOptions},
}

// ValidateField validates a single field of v.
func (s Schema) ValidateField(f Field, v Values) string {
	switch f {
	case FieldUsername:
		return s.Username.Check(v.Username)
	case FieldFavLanguage:
		return s.FavLanguage.Check(v.FavLanguage)
	case FieldFavFood:
		return s.FavFood.Check(v.FavFood)
	case FieldAgreement:
		return s.Agreement.Check(v.Agreement)
	}
	return ""
}

// Validate validates every field of v.
func (s Schema) Validate(v Values) Errors {
	var errs Errors
	for _, f := range Fields {
		errs = errs.Set(f, s.ValidateField(f, v))
	}
	return errs
}

// IsValid reports whether every field of v passes.
func (s Schema) IsValid(v Values) bool {
	return s.Validate(v).Empty()
}

// ValidateField validates f against DefaultSchema.
func ValidateField(f Field, v Values) string {
	return DefaultSchema.ValidateField(f, v)
}

// Validate validates v against DefaultSchema.
func Validate(v Values) Errors {
	return DefaultSchema.Validate(v)
}

// IsValid reports whether v passes DefaultSchema.
func IsValid(v Values) bool {
	return DefaultSchema.IsValid(v)
}

// OptionLabel returns the display label for value, or value itself when it
// is not one of opts.
func OptionLabel(opts []Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

func optionValues(opts []Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}
