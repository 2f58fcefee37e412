package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"
)

func resetTheme(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { require.NoError(t, ApplyTheme(ThemeConfig{})) })
}

func TestApplyTheme_Default(t *testing.T) {
	resetTheme(t)

	require.NoError(t, ApplyTheme(ThemeConfig{}))
	require.Equal(t, defaultAccent, AccentColor)
	require.Equal(t, defaultError, StatusErrorColor)
	require.Equal(t, defaultSuccess, StatusSuccessColor)
	require.Equal(t, defaultMuted, BorderDefaultColor)
}

func TestApplyTheme_ColorOverride(t *testing.T) {
	resetTheme(t)

	err := ApplyTheme(ThemeConfig{Accent: "#FF0000", Muted: "#00FF00"})
	require.NoError(t, err)
	require.Equal(t, lipgloss.AdaptiveColor{Light: "#FF0000", Dark: "#FF0000"}, AccentColor)
	require.Equal(t, AccentColor, BorderHighlightFocusColor)
	require.Equal(t, "#00FF00", TextMutedColor.Dark)
	require.Equal(t, TextMutedColor, BorderDefaultColor)
	require.Equal(t, defaultError, StatusErrorColor)
}

func TestApplyTheme_ResetsPreviousOverrides(t *testing.T) {
	resetTheme(t)

	require.NoError(t, ApplyTheme(ThemeConfig{Error: "#123456"}))
	require.Equal(t, "#123456", StatusErrorColor.Dark)

	require.NoError(t, ApplyTheme(ThemeConfig{}))
	require.Equal(t, defaultError, StatusErrorColor)
}

func TestApplyTheme_InvalidColor(t *testing.T) {
	resetTheme(t)

	err := ApplyTheme(ThemeConfig{Success: "green"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "success")
	require.Equal(t, defaultSuccess, StatusSuccessColor, "failed apply must not change colors")
}

func TestApplyTheme_InvalidMode(t *testing.T) {
	resetTheme(t)

	err := ApplyTheme(ThemeConfig{Mode: "sepia"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown theme mode")
}

func TestButtonStyle(t *testing.T) {
	require.Equal(t, DisabledButtonStyle.Render("Submit"), ButtonStyle(false, true).Render("Submit"))
	require.Equal(t, PrimaryButtonFocusedStyle.Render("Submit"), ButtonStyle(true, true).Render("Submit"))
	require.Equal(t, PrimaryButtonStyle.Render("Submit"), ButtonStyle(true, false).Render("Submit"))
}
