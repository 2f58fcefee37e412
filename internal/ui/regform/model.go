// Package regform is the terminal registration form. It renders a
// form.Controller and turns key and mouse input into controller events.
package regform

import (
	"context"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/regform/internal/client"
	"github.com/zjrosen/regform/internal/form"
	"github.com/zjrosen/regform/internal/keys"
	"github.com/zjrosen/regform/internal/log"
	"github.com/zjrosen/regform/internal/registration"
)

// focus identifies the focused form element, in tab order.
type focus int

const (
	focusUsername focus = iota
	focusLanguage
	focusFood
	focusAgreement
	focusSubmit
	focusCount
)

// SubmitResultMsg carries the result of a submission back to the event loop.
type SubmitResultMsg struct {
	Response client.Response
	Err      error
}

// Model is the registration form.
type Model struct {
	ctx  context.Context
	ctrl *form.Controller
	keys keys.FormKeyMap

	username textinput.Model
	focus    focus
	help     help.Model

	width  int
	height int
}

// New creates the form model. ctx bounds every submission the model starts.
func New(ctx context.Context, ctrl *form.Controller) Model {
	ti := textinput.New()
	ti.Placeholder = "Type Username"
	ti.Prompt = ""
	ti.CharLimit = 64
	ti.Width = inputWidth(defaultFormWidth)
	ti.SetValue(ctrl.Values().Username)
	ti.Focus()

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		keys:     keys.Form,
		username: ti,
		focus:    focusUsername,
		help:     help.New(),
	}
}

// Controller returns the controller the model renders.
func (m Model) Controller() *form.Controller { return m.ctrl }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.username.Width = inputWidth(m.formWidth())
		return m, nil

	case SubmitResultMsg:
		return m.handleSubmitResult(msg), nil

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease {
			return m.handleClick(msg)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus == focusUsername {
		var cmd tea.Cmd
		m.username, cmd = m.username.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Reset):
		return m.reset(), nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		return m.setFocus((m.focus + 1) % focusCount), nil
	case key.Matches(msg, m.keys.PrevField):
		return m.setFocus((m.focus + focusCount - 1) % focusCount), nil
	}

	switch m.focus {
	case focusUsername:
		if key.Matches(msg, m.keys.Enter) {
			return m.setFocus(focusLanguage), nil
		}
		before := m.username.Value()
		var cmd tea.Cmd
		m.username, cmd = m.username.Update(msg)
		if after := m.username.Value(); after != before {
			m.change(registration.FieldUsername, after)
		}
		return m, cmd

	case focusLanguage:
		switch {
		case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Up):
			m.stepLanguage(-1)
		case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Down):
			m.stepLanguage(1)
		case key.Matches(msg, m.keys.Enter):
			return m.setFocus(focusFood), nil
		}

	case focusFood:
		switch {
		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Left):
			m.stepFood(-1)
		case key.Matches(msg, m.keys.Down), key.Matches(msg, m.keys.Right):
			m.stepFood(1)
		case key.Matches(msg, m.keys.Enter):
			return m.setFocus(focusAgreement), nil
		}

	case focusAgreement:
		switch {
		case key.Matches(msg, m.keys.Toggle):
			m.change(registration.FieldAgreement, !m.ctrl.Values().Agreement)
		case key.Matches(msg, m.keys.Enter):
			return m.setFocus(focusSubmit), nil
		}

	case focusSubmit:
		if key.Matches(msg, m.keys.Enter) || key.Matches(msg, m.keys.Toggle) {
			return m.submit()
		}
	}
	return m, nil
}

func (m Model) handleClick(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if z := zone.Get(zoneSubmit); z != nil && z.InBounds(msg) {
		m = m.setFocus(focusSubmit)
		return m.submit()
	}
	if z := zone.Get(zoneAgreement); z != nil && z.InBounds(msg) {
		m = m.setFocus(focusAgreement)
		m.change(registration.FieldAgreement, !m.ctrl.Values().Agreement)
		return m, nil
	}
	for _, opt := range registration.LanguageOptions {
		if z := zone.Get(languageZoneID(opt.Value)); z != nil && z.InBounds(msg) {
			m = m.setFocus(focusLanguage)
			m.change(registration.FieldFavLanguage, opt.Value)
			return m, nil
		}
	}
	if m.focus == focusFood {
		for i, opt := range foodChoices() {
			if z := zone.Get(foodZoneID(i)); z != nil && z.InBounds(msg) {
				m.change(registration.FieldFavFood, opt.Value)
				return m, nil
			}
		}
	}
	if z := zone.Get(zoneFood); z != nil && z.InBounds(msg) {
		return m.setFocus(focusFood), nil
	}
	if z := zone.Get(zoneUsername); z != nil && z.InBounds(msg) {
		return m.setFocus(focusUsername), nil
	}
	return m, nil
}

// submit starts a submission when the controller allows it. The request runs
// in the returned command; its result comes back as SubmitResultMsg.
func (m Model) submit() (tea.Model, tea.Cmd) {
	values, err := m.ctrl.BeginSubmit()
	if err != nil {
		if !m.ctrl.Submitting() {
			// Show what blocks the submission, including untouched fields.
			for _, f := range registration.Fields {
				m.ctrl.ValidateField(f)
			}
		}
		log.Debug(log.CatUI, "submit ignored", "reason", err)
		return m, nil
	}

	ctx, ctrl := m.ctx, m.ctrl
	return m, func() tea.Msg {
		resp, err := ctrl.Send(ctx, values)
		return SubmitResultMsg{Response: resp, Err: err}
	}
}

func (m Model) handleSubmitResult(msg SubmitResultMsg) Model {
	outcome := m.ctrl.ResolveSubmit(msg.Response, msg.Err)
	if outcome.Failure != "" {
		return m
	}
	// Success resets the controller values; mirror that in the input.
	m.username.SetValue(m.ctrl.Values().Username)
	return m.setFocus(focusUsername)
}

// reset clears the form. It is ignored while a submission is in flight so
// the pending result still lands on the values that were sent.
func (m Model) reset() Model {
	if m.ctrl.Submitting() {
		return m
	}
	m.ctrl.Reset()
	m.username.SetValue(m.ctrl.Values().Username)
	return m.setFocus(focusUsername)
}

func (m Model) setFocus(f focus) Model {
	m.focus = f
	if f == focusUsername {
		m.username.Focus()
	} else {
		m.username.Blur()
	}
	return m
}

func (m Model) change(field registration.Field, value any) {
	if err := m.ctrl.OnFieldChange(field, value); err != nil {
		log.ErrorErr(log.CatUI, "field change rejected", err, "field", field)
	}
}

// stepLanguage moves the radio selection by delta, wrapping around. With
// nothing selected, a step forward picks the first option and a step back
// the last.
func (m Model) stepLanguage(delta int) {
	opts := registration.LanguageOptions
	idx := optionIndex(opts, m.ctrl.Values().FavLanguage)
	switch {
	case idx < 0 && delta > 0:
		idx = 0
	case idx < 0:
		idx = len(opts) - 1
	default:
		idx = (idx + delta + len(opts)) % len(opts)
	}
	m.change(registration.FieldFavLanguage, opts[idx].Value)
}

// stepFood moves through the select options, stopping at either end.
func (m Model) stepFood(delta int) {
	choices := foodChoices()
	idx := max(optionIndex(choices, m.ctrl.Values().FavFood), 0)
	next := min(max(idx+delta, 0), len(choices)-1)
	if next == idx {
		return
	}
	m.change(registration.FieldFavFood, choices[next].Value)
}

// inputWidth fits the username input and its cursor inside a section of
// width w.
func inputWidth(w int) int {
	return max(w-5, 1)
}

// foodChoices is the select's option list with the empty placeholder first.
func foodChoices() []registration.Option {
	return append([]registration.Option{{Label: foodPlaceholder, Value: ""}}, registration.FoodOptions...)
}

func optionIndex(opts []registration.Option, value string) int {
	return slices.IndexFunc(opts, func(o registration.Option) bool { return o.Value == value })
}
