package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the status bar: logo, view, session, book count.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{
		bg.Render("folio", styles.Logo),
		bg.Render(m.view.String(), styles.AccentText.Bold(true)),
	}

	if m.session.Active() {
		user := m.session.User
		if compact {
			user = truncate(user, 16)
		}
		parts = append(parts, bg.Render("●", styles.SuccessText)+bg.Space()+bg.Render(user, styles.Text))
	} else {
		parts = append(parts, bg.Render("○ Guest", styles.MutedText))
	}

	if m.view != ViewDetail && m.listErr == nil && !m.loading {
		parts = append(parts, bg.Render(pluralize(m.list.Len(), "book", "books"), styles.MutedText))
	}

	if m.loading || m.busy {
		activity := m.status
		if activity == "" {
			activity = "Loading..."
		}
		parts = append(parts, m.spinner.View()+bg.Space()+bg.Render(activity, styles.WarningText))
	} else if m.status != "" && !compact {
		parts = append(parts, bg.Render(m.status, styles.InfoText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(styles.Header.Render(bg.Join(parts, "  ")))
}

// renderCommandBar renders the key hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.view {
	case ViewDetail:
		commands = []cmd{
			{"esc", "Back"},
			{"j/k", "Scroll"},
			{"r", "Reload"},
		}
	case ViewWorks:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"[/]", "Page"},
			{"enter", "Open"},
			{"n", "New"},
			{"e", "Edit"},
			{"d", "Delete"},
			{"c", "Catalog"},
		}
	default:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"[/]", "Page"},
			{"enter", "Open"},
			{"m", "My works"},
		}
	}

	sessionLabel := "Log in"
	if m.session.Active() {
		sessionLabel = "Log out"
	}
	commands = append(commands, cmd{"L", sessionLabel}, cmd{"?", "More"})

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}
