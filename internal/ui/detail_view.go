package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/five82/folio/internal/catalog"
)

func (m *Model) initDetailViewport() {
	width, height := m.detailViewportSize()
	m.detailViewport = viewport.New(width, height)
}

func (m *Model) resizeDetailViewport() {
	width, height := m.detailViewportSize()
	m.detailViewport.Width = width
	m.detailViewport.Height = height
	m.renderDetail()
}

func (m Model) detailViewportSize() (int, int) {
	width, height := m.contentSize()
	return width - 4, height - 2
}

// detailMarkdown builds the markdown document for the loaded book.
func (m Model) detailMarkdown() string {
	e := m.detail.entry
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", e.Title)
	fmt.Fprintf(&b, "**Author:** %s  \n", e.Author)
	fmt.Fprintf(&b, "**Created:** %s  \n", e.CreatedAt)
	if e.Owner != "" {
		fmt.Fprintf(&b, "**Owner:** %s  \n", e.Owner)
	}
	fmt.Fprintf(&b, "**Cover:** %s\n\n", e.Image)
	b.WriteString("---\n\n")
	b.WriteString(e.Summary)
	b.WriteString("\n")
	return b.String()
}

// renderDetail refreshes the viewport content from the loaded book.
func (m *Model) renderDetail() {
	if !m.detail.loaded || m.detailViewport.Width <= 0 {
		return
	}
	md := m.detailMarkdown()
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.theme.Markdown),
		glamour.WithWordWrap(m.detailViewport.Width),
	)
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			m.detailViewport.SetContent(out)
			return
		}
	}
	m.logger.Debug("markdown render failed", zap.Error(err))
	m.detailViewport.SetContent(md)
}

// handleDetailKey handles keys while a single book is shown.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Escape) {
		return m, m.mountList(m.listView)
	}
	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

// renderDetailView renders the detail box.
func (m Model) renderDetailView() string {
	width, height := m.contentSize()
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	title := fmt.Sprintf("Book #%d", m.detail.id)

	var body string
	switch {
	case m.loading:
		body = "\n " + m.spinner.View() + " " + styles.MutedText.Render("Loading book...")
	case m.detail.err != nil:
		msg := "Failed to load book: " + catalog.Message(m.detail.err)
		if errors.Is(m.detail.err, catalog.ErrNotFound) {
			msg = "Book not found."
		}
		body = "\n " + styles.DangerText.Render(msg) +
			"\n\n " + styles.FaintText.Render("Press esc to go back.")
	case m.detail.loaded:
		title = fmt.Sprintf("%s (%d%%)", m.detail.entry.Title, int(m.detailViewport.ScrollPercent()*100))
		body = m.detailViewport.View()
	}
	return m.renderTitledBox(title, body, width, height)
}
