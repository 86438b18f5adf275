// Package ui holds the transient notification line shown under the player.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hlsplay/hlsplay/style"
)

// Lifetime is how long a notification stays on screen.
const Lifetime = 3 * time.Second

// Model displays at most one notification at a time.
type Model struct {
	notification string
	generation   int
}

// NotificationMsg shows Text until it expires.
type NotificationMsg struct {
	Text string
}

// ClearNotificationMsg expires the notification of the given generation.
type ClearNotificationMsg struct {
	generation int
}

// Notify returns a command that shows text.
func Notify(text string) tea.Cmd {
	return func() tea.Msg {
		return NotificationMsg{Text: text}
	}
}

func (m *Model) clearAfter(generation int) tea.Cmd {
	return tea.Tick(Lifetime, func(time.Time) tea.Msg {
		return ClearNotificationMsg{generation: generation}
	})
}

// Update handles notification messages and ignores everything else.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NotificationMsg:
		m.notification = msg.Text
		m.generation++
		return m.clearAfter(m.generation)
	case ClearNotificationMsg:
		// a newer notification keeps its own timer
		if msg.generation == m.generation {
			m.notification = ""
		}
	}
	return nil
}

// Notification returns the text on screen, if any.
func (m *Model) Notification() string {
	return m.notification
}

// View appends the notification to the last line of mainContent.
func (m *Model) View(mainContent string) string {
	if m.notification == "" {
		return mainContent
	}

	lines := strings.Split(mainContent, "\n")
	lines[len(lines)-1] += "  " + style.Faint(m.notification)
	return strings.Join(lines, "\n")
}
