package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hlsplay/hlsplay/form"
)

func (b *statefulBubble) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, b.listen()}

	if source := b.options.Source; source != "" {
		b.formC.SetValue(source)
		cmds = append(cmds, func() tea.Msg {
			return form.SubmitMsg{Source: source}
		})
	}

	return tea.Batch(cmds...)
}
