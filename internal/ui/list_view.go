package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/folio/internal/catalog"
	"github.com/five82/folio/internal/state"
)

// deleteConfirmedMsg is emitted by the delete confirmation dialog.
type deleteConfirmedMsg struct {
	id int64
}

// pageEntries returns the entries on the current page.
func (m Model) pageEntries() []state.Entry {
	entries, _ := state.Slice(m.list.Entries(), m.page, m.pageSize)
	return entries
}

func (m Model) totalPages() int {
	_, total := state.Slice(m.list.Entries(), 1, m.pageSize)
	return total
}

// selectedEntry returns the entry under the cursor.
func (m Model) selectedEntry() (state.Entry, bool) {
	entries := m.pageEntries()
	if m.cursor < 0 || m.cursor >= len(entries) {
		return state.Entry{}, false
	}
	return entries[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.pageEntries())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) gotoPage(page int) {
	m.page = state.ClampPage(page, m.totalPages())
	m.cursor = 0
}

// handleListKey handles keys for the catalog and works views.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.pageEntries())-1 {
			m.cursor++
		} else if m.page < m.totalPages() {
			m.gotoPage(m.page + 1)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		} else if m.page > 1 {
			m.gotoPage(m.page - 1)
			m.cursor = len(m.pageEntries()) - 1
		}
		return m, nil

	case key.Matches(msg, m.keys.NextPage):
		m.gotoPage(m.page + 1)
		return m, nil

	case key.Matches(msg, m.keys.PrevPage):
		m.gotoPage(m.page - 1)
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.gotoPage(1)
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.gotoPage(m.totalPages())
		return m, nil

	case key.Matches(msg, m.keys.Open):
		if entry, ok := m.selectedEntry(); ok {
			return m, m.mountDetail(entry.ID)
		}
		return m, nil
	}

	if m.view != ViewWorks || m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.New):
		m.modal = newCreateForm()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Edit):
		if entry, ok := m.selectedEntry(); ok {
			m.modal = newEditForm(entry, m.defaults)
			return m, textinput.Blink
		}

	case key.Matches(msg, m.keys.Delete):
		if entry, ok := m.selectedEntry(); ok {
			m.modal = confirmModal{
				title:  "Delete Book",
				prompt: fmt.Sprintf("Delete %q (#%d)? This cannot be undone.", entry.Title, entry.ID),
				onYes:  deleteConfirmedMsg{id: entry.ID},
			}
		}
	}
	return m, nil
}

// renderListView renders the current page of books.
func (m Model) renderListView() string {
	width, height := m.contentSize()
	title := m.view.String()
	if m.list.Len() > 0 {
		title = fmt.Sprintf("%s (%s)", title, pluralize(m.list.Len(), "book", "books"))
	}
	return m.renderTitledBox(title, m.listBody(width-2, height-2), width, height)
}

func (m Model) listBody(width, height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)

	switch {
	case m.loading:
		return "\n " + m.spinner.View() + " " + styles.MutedText.Render("Loading books...")
	case m.listErr != nil:
		return "\n " + styles.DangerText.Render("Failed to load books: "+catalog.Message(m.listErr)) +
			"\n\n " + styles.FaintText.Render("Press r to retry.")
	case m.list.Len() == 0:
		hint := "The catalog is empty."
		if m.view == ViewWorks {
			hint = "Press n to add your first book."
		}
		return "\n " + styles.MutedText.Render("No books yet") + "\n\n " + styles.FaintText.Render(hint)
	}

	var b strings.Builder
	for i, entry := range m.pageEntries() {
		b.WriteString(m.renderListRow(entry, i == m.cursor, width, styles))
	}

	// Pad so the pager sits at the bottom of the box.
	used := strings.Count(b.String(), "\n")
	for i := used; i < height-1; i++ {
		b.WriteString("\n")
	}
	b.WriteString(m.renderPager(styles))
	return b.String()
}

func (m Model) renderListRow(e state.Entry, selected bool, width int, styles Styles) string {
	marker := "  "
	titleStyle := styles.Text.Bold(true)
	if selected {
		marker = styles.AccentText.Render("▌ ")
		titleStyle = m.theme.Styles().Selected.Bold(true)
	}

	meta := fmt.Sprintf(" · %s · %s", e.Author, e.CreatedAt)
	id := fmt.Sprintf("#%d ", e.ID)
	room := max(width-len(id)-len(meta)-3, 12)
	line := marker +
		styles.FaintText.Render(id) +
		titleStyle.Render(truncate(e.Title, room)) +
		styles.MutedText.Render(meta)

	excerpt := styles.MutedText.Render(truncate(e.Excerpt(state.ListExcerptLength), width-4))
	return line + "\n  " + excerpt + "\n\n"
}

func (m Model) renderPager(styles Styles) string {
	total := m.totalPages()
	pg := m.paginator
	pg.PerPage = m.pageSize
	pg.SetTotalPages(m.list.Len())
	pg.Page = m.page - 1
	return " " + pg.View() + "  " + styles.FaintText.Render(fmt.Sprintf("Page %d/%d", m.page, total))
}
