package styles

import (
	"fmt"
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

// ThemeConfig mirrors config.ThemeConfig to avoid circular imports.
type ThemeConfig struct {
	Mode    string
	Accent  string
	Muted   string
	Error   string
	Success string
}

var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ApplyTheme resets the palette to its defaults, applies the non-empty color
// overrides and the mode, then rebuilds every style. On error nothing changes.
func ApplyTheme(cfg ThemeConfig) error {
	overrides := []struct {
		name  string
		value string
	}{
		{"accent", cfg.Accent},
		{"muted", cfg.Muted},
		{"error", cfg.Error},
		{"success", cfg.Success},
	}
	for _, o := range overrides {
		if o.value != "" && !hexColorRe.MatchString(o.value) {
			return fmt.Errorf("invalid hex color for %s: %s", o.name, o.value)
		}
	}

	switch cfg.Mode {
	case "":
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	default:
		return fmt.Errorf("unknown theme mode: %s", cfg.Mode)
	}

	AccentColor = pick(cfg.Accent, defaultAccent)
	BorderHighlightFocusColor = AccentColor
	TextMutedColor = pick(cfg.Muted, defaultMuted)
	BorderDefaultColor = TextMutedColor
	StatusErrorColor = pick(cfg.Error, defaultError)
	StatusSuccessColor = pick(cfg.Success, defaultSuccess)

	rebuildStyles()
	return nil
}

// pick uses the same hex for both modes when set.
func pick(hex string, fallback lipgloss.AdaptiveColor) lipgloss.AdaptiveColor {
	if hex == "" {
		return fallback
	}
	return lipgloss.AdaptiveColor{Light: hex, Dark: hex}
}
