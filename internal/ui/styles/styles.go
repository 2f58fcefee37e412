// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

// Default palette. ApplyTheme resets to these before applying overrides.
var (
	defaultAccent  = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#54A0FF"}
	defaultMuted   = lipgloss.AdaptiveColor{Light: "#9CA0B0", Dark: "#696969"}
	defaultError   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	defaultSuccess = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
)

var (
	// Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#2D3436", Dark: "#CCCCCC"}
	TextMutedColor       = defaultMuted
	TextPlaceholderColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#777777"}

	// Borders
	BorderDefaultColor        = defaultMuted
	BorderHighlightFocusColor = defaultAccent

	// Status
	StatusSuccessColor = defaultSuccess
	StatusErrorColor   = defaultError

	// Accent marks focus, the cursor and selected options.
	AccentColor = defaultAccent

	// Button colors
	ButtonTextColor           = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
	ButtonPrimaryBgColor      = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#1A5276"}
	ButtonPrimaryFocusBgColor = lipgloss.AdaptiveColor{Light: "#3498DB", Dark: "#3498DB"}
	ButtonDisabledTextColor   = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#777777"}
	ButtonDisabledBgColor     = lipgloss.AdaptiveColor{Light: "#2D2D2D", Dark: "#2D2D2D"}
)

// Styles built from the colors above. rebuildStyles refreshes them after
// ApplyTheme changes a color.
var (
	TitleStyle              lipgloss.Style
	HintStyle               lipgloss.Style
	FieldErrorStyle         lipgloss.Style
	SuccessBannerStyle      lipgloss.Style
	ErrorBannerStyle        lipgloss.Style
	SelectionIndicatorStyle lipgloss.Style
	OptionStyle             lipgloss.Style
	OptionSelectedStyle     lipgloss.Style
	PlaceholderStyle        lipgloss.Style
	StatusBarStyle          lipgloss.Style

	PrimaryButtonStyle        lipgloss.Style
	PrimaryButtonFocusedStyle lipgloss.Style
	DisabledButtonStyle       lipgloss.Style
)

func init() {
	rebuildStyles()
}

func rebuildStyles() {
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)
	HintStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
	FieldErrorStyle = lipgloss.NewStyle().Foreground(StatusErrorColor)

	banner := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	SuccessBannerStyle = banner.
		BorderForeground(StatusSuccessColor).
		Foreground(StatusSuccessColor)
	ErrorBannerStyle = banner.
		BorderForeground(StatusErrorColor).
		Foreground(StatusErrorColor)

	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)
	OptionStyle = lipgloss.NewStyle().Foreground(TextPrimaryColor)
	OptionSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)
	PlaceholderStyle = lipgloss.NewStyle().Foreground(TextPlaceholderColor)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(TextMutedColor).
		Padding(0, 1)

	baseButtonStyle := lipgloss.NewStyle().Padding(0, 2).Bold(true)

	PrimaryButtonStyle = baseButtonStyle.
		Foreground(ButtonTextColor).
		Background(ButtonPrimaryBgColor)

	PrimaryButtonFocusedStyle = baseButtonStyle.
		Foreground(ButtonTextColor).
		Background(ButtonPrimaryFocusBgColor).
		Underline(true).
		UnderlineSpaces(true)

	DisabledButtonStyle = baseButtonStyle.
		Bold(false).
		Foreground(ButtonDisabledTextColor).
		Background(ButtonDisabledBgColor)
}

// ButtonStyle picks the submit button style for the given state.
// A disabled button never shows focus.
func ButtonStyle(enabled, focused bool) lipgloss.Style {
	switch {
	case !enabled:
		return DisabledButtonStyle
	case focused:
		return PrimaryButtonFocusedStyle
	default:
		return PrimaryButtonStyle
	}
}
