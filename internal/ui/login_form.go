package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/folio/internal/catalog"
)

// loginSubmittedMsg asks the model to check credentials, then open after.
type loginSubmittedMsg struct {
	creds catalog.Credentials
	after View
}

// loginForm collects an email and password.
type loginForm struct {
	email    textinput.Model
	password textinput.Model
	focus    int
	after    View
	err      string
}

func newLoginForm(after View) loginForm {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Width = 32
	email.Prompt = ""
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 32
	password.Prompt = ""
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginForm{email: email, password: password, after: after}
}

func (l *loginForm) toggleFocus() tea.Cmd {
	if l.focus == 0 {
		l.focus = 1
		l.email.Blur()
		return l.password.Focus()
	}
	l.focus = 0
	l.password.Blur()
	return l.email.Focus()
}

func (l loginForm) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, keys.Escape):
			return l, nil, true
		case key.Matches(k, keys.NextField), key.Matches(k, keys.PrevField):
			cmd := l.toggleFocus()
			return l, cmd, false
		case key.Matches(k, keys.Confirm):
			if l.focus == 0 {
				cmd := l.toggleFocus()
				return l, cmd, false
			}
			creds := catalog.Credentials{
				Email:    strings.TrimSpace(l.email.Value()),
				Password: l.password.Value(),
			}
			if creds.Email == "" {
				l.err = "Email is required."
				return l, nil, false
			}
			return l, msgCmd(loginSubmittedMsg{creds: creds, after: l.after}), true
		}
		l.err = ""
	}

	var cmd tea.Cmd
	if l.focus == 0 {
		l.email, cmd = l.email.Update(msg)
	} else {
		l.password, cmd = l.password.Update(msg)
	}
	return l, cmd, false
}

func (l loginForm) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(dialogHeader(styles, "Log In", 40))
	b.WriteString(styles.MutedText.Render("My works is available after logging in."))
	b.WriteString("\n\n")

	labels := []string{"Email:", "Password:"}
	views := []string{l.email.View(), l.password.View()}
	for i := range labels {
		label := padRight(labels[i], 11)
		if l.focus == i {
			b.WriteString(styles.AccentText.Render(label))
		} else {
			b.WriteString(styles.MutedText.Render(label))
		}
		b.WriteString(views[i])
		b.WriteString("\n\n")
	}
	if l.err != "" {
		b.WriteString(styles.DangerText.Render(l.err))
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render("Enter: Log in  •  Tab: Next  •  Esc: Cancel"))
	return placeModal(theme, width, height, styles.Modal.Width(52).Render(b.String()))
}
