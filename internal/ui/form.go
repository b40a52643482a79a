package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/folio/internal/catalog"
	"github.com/five82/folio/internal/state"
)

// Form field order.
const (
	fieldTitle = iota
	fieldAuthor
	fieldCover
	fieldContent
	fieldCount
)

const formWidth = 56

// bookEditSubmittedMsg carries the changed fields of an edit.
type bookEditSubmittedMsg struct {
	id     int64
	fields catalog.Update
}

// bookDraftSubmittedMsg carries a new book.
type bookDraftSubmittedMsg struct {
	draft catalog.Draft
}

// bookForm edits the four user-editable fields of a book. With editing set
// it submits only the fields that differ from their initial values.
type bookForm struct {
	editing bool
	id      int64
	initial [fieldCount]string

	inputs  [fieldCount - 1]textinput.Model
	content textarea.Model
	focus   int
	err     string
}

func newBookInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = formWidth - 14
	in.Prompt = ""
	return in
}

func newBookForm() bookForm {
	f := bookForm{}
	f.inputs[fieldTitle] = newBookInput("Book title", 200)
	f.inputs[fieldAuthor] = newBookInput("Author name", 100)
	f.inputs[fieldCover] = newBookInput("https://...", 500)

	ta := textarea.New()
	ta.Placeholder = "Description or full text (markdown)"
	ta.ShowLineNumbers = false
	ta.SetWidth(formWidth - 4)
	ta.SetHeight(6)
	ta.CharLimit = 0
	f.content = ta

	f.inputs[fieldTitle].Focus()
	return f
}

// newCreateForm returns an empty form for a new book.
func newCreateForm() bookForm {
	return newBookForm()
}

// newEditForm returns a form prefilled from the displayed entry. Placeholder
// text is not prefilled, so an untouched empty field stays empty.
func newEditForm(e state.Entry, d state.Defaults) bookForm {
	f := newBookForm()
	f.editing = true
	f.id = e.ID
	f.initial = [fieldCount]string{
		fieldTitle:   unlessPlaceholder(e.Title, d.Title),
		fieldAuthor:  unlessPlaceholder(e.Author, d.Author),
		fieldCover:   unlessPlaceholder(e.Image, d.Image),
		fieldContent: unlessPlaceholder(e.Summary, d.Summary),
	}
	f.inputs[fieldTitle].SetValue(f.initial[fieldTitle])
	f.inputs[fieldAuthor].SetValue(f.initial[fieldAuthor])
	f.inputs[fieldCover].SetValue(f.initial[fieldCover])
	f.content.SetValue(f.initial[fieldContent])

	// Widgets rewrite some input on SetValue; compare against what they hold.
	for i := range f.initial {
		f.initial[i] = f.value(i)
	}
	return f
}

func unlessPlaceholder(value, placeholder string) string {
	if value == placeholder {
		return ""
	}
	return value
}

func (f bookForm) value(field int) string {
	if field == fieldContent {
		return strings.TrimSpace(f.content.Value())
	}
	return strings.TrimSpace(f.inputs[field].Value())
}

// changes returns the fields whose value differs from the prefilled one.
func (f bookForm) changes() catalog.Update {
	var u catalog.Update
	if v := f.value(fieldTitle); v != f.initial[fieldTitle] {
		u.Title = catalog.String(v)
	}
	if v := f.value(fieldAuthor); v != f.initial[fieldAuthor] {
		u.Author = catalog.String(v)
	}
	if v := f.value(fieldCover); v != f.initial[fieldCover] {
		u.CoverImageURL = catalog.String(v)
	}
	if v := f.value(fieldContent); v != f.initial[fieldContent] {
		u.Content = catalog.String(v)
	}
	return u
}

func (f bookForm) draft() catalog.Draft {
	return catalog.Draft{
		Title:         f.value(fieldTitle),
		Author:        f.value(fieldAuthor),
		CoverImageURL: f.value(fieldCover),
		Content:       f.value(fieldContent),
	}
}

func (f *bookForm) setFocus(idx int) tea.Cmd {
	f.focus = (idx + fieldCount) % fieldCount
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	f.content.Blur()
	if f.focus == fieldContent {
		return f.content.Focus()
	}
	return f.inputs[f.focus].Focus()
}

func (f bookForm) submit() (Modal, tea.Cmd, bool) {
	if f.editing {
		fields := f.changes()
		if fields.Empty() {
			return f, nil, true
		}
		if err := fields.Validate(); err != nil {
			f.err = "Title is required."
			return f, nil, false
		}
		return f, msgCmd(bookEditSubmittedMsg{id: f.id, fields: fields}), true
	}
	draft := f.draft()
	if err := draft.Validate(); err != nil {
		f.err = "Title is required."
		return f, nil, false
	}
	return f, msgCmd(bookDraftSubmittedMsg{draft: draft}), true
}

func (f bookForm) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	k, ok := msg.(tea.KeyMsg)
	if ok {
		switch {
		case key.Matches(k, keys.Escape):
			return f, nil, true
		case key.Matches(k, keys.Submit):
			return f.submit()
		case key.Matches(k, keys.NextField):
			cmd := f.setFocus(f.focus + 1)
			return f, cmd, false
		case key.Matches(k, keys.PrevField):
			cmd := f.setFocus(f.focus - 1)
			return f, cmd, false
		case key.Matches(k, keys.Confirm) && f.focus != fieldContent:
			cmd := f.setFocus(f.focus + 1)
			return f, cmd, false
		}
		f.err = ""
	}

	var cmd tea.Cmd
	if f.focus == fieldContent {
		f.content, cmd = f.content.Update(msg)
	} else {
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	}
	return f, cmd, false
}

func (f bookForm) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	title := "New Book"
	if f.editing {
		title = "Edit Book"
	}

	var b strings.Builder
	b.WriteString(dialogHeader(styles, title, formWidth-6))

	labels := [fieldCount]string{"Title", "Author", "Cover URL", "Content"}
	for i := 0; i < fieldCount-1; i++ {
		label := padRight(labels[i]+":", 12)
		if f.focus == i {
			b.WriteString(styles.AccentText.Render(label))
		} else {
			b.WriteString(styles.MutedText.Render(label))
		}
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n\n")
	}
	contentLabel := labels[fieldContent] + ":"
	if f.focus == fieldContent {
		b.WriteString(styles.AccentText.Render(contentLabel))
	} else {
		b.WriteString(styles.MutedText.Render(contentLabel))
	}
	b.WriteString("\n")
	b.WriteString(f.content.View())
	b.WriteString("\n\n")

	if f.err != "" {
		b.WriteString(styles.DangerText.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render("Tab: Next  •  Ctrl+S: Save  •  Esc: Cancel"))

	return placeModal(theme, width, height, styles.Modal.Width(formWidth).Render(b.String()))
}
