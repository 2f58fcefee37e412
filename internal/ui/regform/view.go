package regform

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/regform/internal/registration"
	"github.com/zjrosen/regform/internal/ui/styles"
)

const (
	formTitle       = "Create an Account"
	foodPlaceholder = "-- Select Favorite Food --"
	agreementLabel  = "Agree to our terms"
	submitLabel     = "Submit"
	submittingLabel = "Submitting…"

	defaultFormWidth = 56
	minFormWidth     = 24
)

// Zone IDs for mouse hit testing.
const (
	zoneUsername  = "regform-username"
	zoneFood      = "regform-food"
	zoneAgreement = "regform-agreement"
	zoneSubmit    = "regform-submit"
)

func languageZoneID(value string) string { return "regform-lang-" + value }

func foodZoneID(i int) string { return fmt.Sprintf("regform-food-%d", i) }

// View implements tea.Model.
func (m Model) View() string {
	w := m.formWidth()
	values := m.ctrl.Values()
	errs := m.ctrl.Errors()

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(formTitle))
	b.WriteString("\n\n")

	if banner := m.renderBanner(w); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}

	b.WriteString(zone.Mark(zoneUsername, styles.RenderFormSection(
		[]string{" " + m.username.View()},
		"Username", "", errs.Username, w, m.focus == focusUsername)))
	b.WriteString("\n")

	b.WriteString(styles.RenderFormSection(
		[]string{m.renderLanguage(values.FavLanguage)},
		"Favorite Language", "", errs.FavLanguage, w, m.focus == focusLanguage))
	b.WriteString("\n")

	b.WriteString(styles.RenderFormSection(
		m.renderFood(values.FavFood),
		"Favorite Food", "", errs.FavFood, w, m.focus == focusFood))
	b.WriteString("\n")

	b.WriteString(styles.RenderFormSection(
		[]string{m.renderAgreement(values.Agreement)},
		"Terms", "", errs.Agreement, w, m.focus == focusAgreement))
	b.WriteString("\n\n")

	b.WriteString(m.renderSubmit())
	b.WriteString("\n\n")
	b.WriteString(m.renderStatus())

	return zone.Scan(b.String())
}

func (m Model) formWidth() int {
	if m.width <= 0 {
		return defaultFormWidth
	}
	return max(min(defaultFormWidth, m.width), minFormWidth)
}

// renderBanner shows the last server outcome, word-wrapped to the form width.
func (m Model) renderBanner(w int) string {
	outcome := m.ctrl.Outcome()
	inner := max(w-4, 1) // border and padding

	switch {
	case outcome.Success != "":
		return styles.SuccessBannerStyle.Width(w - 2).Render(wordwrap.String(outcome.Success, inner))
	case outcome.Failure != "":
		return styles.ErrorBannerStyle.Width(w - 2).Render(wordwrap.String(outcome.Failure, inner))
	default:
		return ""
	}
}

func (m Model) renderLanguage(current string) string {
	parts := make([]string, 0, len(registration.LanguageOptions))
	for _, opt := range registration.LanguageOptions {
		mark := "( )"
		style := styles.OptionStyle
		if opt.Value == current {
			mark = "(•)"
			if m.focus == focusLanguage {
				style = styles.OptionSelectedStyle
			}
		}
		parts = append(parts, zone.Mark(languageZoneID(opt.Value), style.Render(mark+" "+opt.Label)))
	}
	return "  " + strings.Join(parts, "   ")
}

// renderFood shows the selected option, or the whole list while focused.
func (m Model) renderFood(current string) []string {
	choices := foodChoices()
	idx := max(optionIndex(choices, current), 0)

	if m.focus != focusFood {
		label := choices[idx].Label
		style := styles.OptionStyle
		if idx == 0 {
			style = styles.PlaceholderStyle
		}
		return []string{"  " + zone.Mark(zoneFood, style.Render(label)+" "+styles.HintStyle.Render("▾"))}
	}

	lines := make([]string, 0, len(choices))
	for i, opt := range choices {
		prefix := "  "
		style := styles.OptionStyle
		switch {
		case i == idx:
			prefix = styles.SelectionIndicatorStyle.Render(">") + " "
			style = styles.OptionSelectedStyle
		case i == 0:
			style = styles.PlaceholderStyle
		}
		lines = append(lines, " "+zone.Mark(foodZoneID(i), prefix+style.Render(opt.Label)))
	}
	return lines
}

func (m Model) renderAgreement(agreed bool) string {
	box := "[ ]"
	if agreed {
		box = "[x]"
	}
	style := styles.OptionStyle
	if m.focus == focusAgreement {
		style = styles.OptionSelectedStyle
	}
	return "  " + zone.Mark(zoneAgreement, style.Render(box+" "+agreementLabel))
}

func (m Model) renderSubmit() string {
	label := submitLabel
	if m.ctrl.Submitting() {
		label = submittingLabel
	}
	btn := styles.ButtonStyle(m.ctrl.SubmitEnabled(), m.focus == focusSubmit).Render(label)
	return lipgloss.PlaceHorizontal(m.formWidth(), lipgloss.Center, zone.Mark(zoneSubmit, btn))
}

// renderStatus is the key help line, truncated to the terminal width. With
// full help toggled on it lists every binding instead.
func (m Model) renderStatus() string {
	limit := m.formWidth()
	if m.width > 0 {
		limit = m.width
	}

	if m.help.ShowAll {
		h := m.help
		h.Width = max(limit-2, 1)
		return styles.StatusBarStyle.Render(h.View(m.keys))
	}

	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	line := strings.Join(parts, " • ")
	return styles.StatusBarStyle.Render(runewidth.Truncate(line, max(limit-2, 1), "…"))
}
