// Package form is the source input: an editable line that hands its content
// over untouched when confirmed.
package form

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hlsplay/hlsplay/style"
	"github.com/samber/mo"
)

// SubmitMsg carries the buffer exactly as typed.
type SubmitMsg struct {
	Source string
}

// Suggester proposes a completion for the current buffer.
type Suggester func(string) mo.Option[string]

// KeyMap holds the bindings the form reacts to.
type KeyMap struct {
	Submit, AcceptSuggestion key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "load"),
		),
		AcceptSuggestion: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "accept suggestion"),
		),
	}
}

type Model struct {
	KeyMap KeyMap

	input      textinput.Model
	suggest    Suggester
	suggestion mo.Option[string]
}

// New creates a focused form. suggest may be nil.
func New(prompt string, suggest Suggester) Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = "https://example.com/stream.m3u8"
	input.PromptStyle = style.New().Foreground(style.AccentColor)
	input.Cursor.Style = style.New().Foreground(style.AccentColor)
	input.Focus()

	return Model{
		KeyMap:  DefaultKeyMap(),
		input:   input,
		suggest: suggest,
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.input.Focused() {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.KeyMap.Submit):
			source := m.input.Value()
			return m, func() tea.Msg {
				return SubmitMsg{Source: source}
			}
		case key.Matches(msg, m.KeyMap.AcceptSuggestion) && m.suggestion.IsPresent():
			m.input.SetValue(m.suggestion.MustGet())
			m.input.CursorEnd()
			m.suggestion = mo.None[string]()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refreshSuggestion()

	return m, cmd
}

func (m *Model) refreshSuggestion() {
	value := m.input.Value()
	if m.suggest == nil || value == "" {
		m.suggestion = mo.None[string]()
		return
	}

	if suggestion, ok := m.suggest(value).Get(); ok && suggestion != value {
		m.suggestion = mo.Some(suggestion)
	} else {
		m.suggestion = mo.None[string]()
	}
}

func (m Model) View() string {
	return m.input.View()
}

// SuggestionView renders the pending suggestion, or nothing.
func (m Model) SuggestionView() string {
	suggestion, ok := m.suggestion.Get()
	if !ok {
		return ""
	}

	return style.Faint(m.KeyMap.AcceptSuggestion.Help().Key + " " + suggestion)
}

func (m Model) Suggestion() mo.Option[string] {
	return m.suggestion
}

func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

func (m *Model) Blur() {
	m.input.Blur()
}

func (m Model) Focused() bool {
	return m.input.Focused()
}

func (m Model) Value() string {
	return m.input.Value()
}

func (m *Model) SetValue(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
	m.refreshSuggestion()
}

func (m *Model) SetWidth(width int) {
	m.input.Width = max(width-len(m.input.Prompt)-1, 1)
}
