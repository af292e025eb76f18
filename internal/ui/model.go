// Package ui holds short-lived notifications shown at the bottom of the player.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Lifetime is how long a notification stays up.
const Lifetime = 3 * time.Second

var notificationStyle = lipgloss.NewStyle().Faint(true)

// Model is the current notification, if any.
type Model struct {
	notification string
	// generation makes a clear scheduled for an older notification a no-op.
	generation int
}

// NotificationMsg asks the model to show Text.
type NotificationMsg struct {
	Text string
}

// ClearNotificationMsg hides the notification it was scheduled for.
type ClearNotificationMsg struct {
	generation int
}

// Notify returns a command that shows text.
func Notify(text string) tea.Cmd {
	return func() tea.Msg {
		return NotificationMsg{Text: text}
	}
}

func clearAfter(generation int) tea.Cmd {
	return tea.Tick(Lifetime, func(time.Time) tea.Msg {
		return ClearNotificationMsg{generation: generation}
	})
}

// Notification returns the text on screen.
func (m *Model) Notification() string {
	return m.notification
}

// Update handles notification messages and ignores the rest.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NotificationMsg:
		m.notification = msg.Text
		m.generation++
		return clearAfter(m.generation)
	case ClearNotificationMsg:
		if msg.generation == m.generation {
			m.notification = ""
		}
	}
	return nil
}

// View appends the notification to the last line of content.
func (m *Model) View(content string) string {
	if m.notification == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + notificationStyle.Render(m.notification)
	return strings.Join(lines, "\n")
}
