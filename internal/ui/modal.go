package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// placeModal centers a rendered dialog on a blank screen.
func placeModal(theme Theme, width, height int, box string) string {
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

// dialogHeader renders a bold title followed by a rule.
func dialogHeader(styles Styles, title string, width int) string {
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", width)))
	b.WriteString("\n\n")
	return b.String()
}

func msgCmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// noticeModal is a blocking message dismissed with enter or esc.
type noticeModal struct {
	title   string
	message string
	danger  bool
}

func newNotice(title, message string) noticeModal {
	return noticeModal{title: title, message: message}
}

func newErrorNotice(title, message string) noticeModal {
	return noticeModal{title: title, message: message, danger: true}
}

func (n noticeModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter", "esc", " ", "q":
			return n, nil, true
		}
	}
	return n, nil, false
}

func (n noticeModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	box := styles.Modal
	if n.danger {
		box = styles.DangerModal
	}
	var b strings.Builder
	b.WriteString(dialogHeader(styles, n.title, 36))
	message := strings.TrimSpace(n.message)
	if message == "" {
		message = "Something went wrong."
	}
	b.WriteString(styles.Text.Width(40).Render(message))
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("Enter: OK"))
	return placeModal(theme, width, height, box.Width(48).Render(b.String()))
}

// confirmModal asks a yes/no question and emits onYes when accepted.
type confirmModal struct {
	title  string
	prompt string
	onYes  tea.Msg
}

func (c confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(k, keys.Yes), key.Matches(k, keys.Confirm):
		return c, msgCmd(c.onYes), true
	case key.Matches(k, keys.No), key.Matches(k, keys.Escape):
		return c, nil, true
	}
	return c, nil, false
}

func (c confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(dialogHeader(styles, c.title, 36))
	b.WriteString(styles.Text.Width(40).Render(c.prompt))
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("y/Enter: Delete  •  n/Esc: Cancel"))
	return placeModal(theme, width, height, styles.DangerModal.Width(48).Render(b.String()))
}
