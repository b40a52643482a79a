package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/five82/folio/internal/logging"
	"github.com/five82/folio/internal/state"
)

const titleColumnWidth = 40

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Bold(true)

	levelStyles = map[string]lipgloss.Style{
		"DEBUG": lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		"INFO":  lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")),
		"WARN":  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
		"ERROR": lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
	}
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	fieldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87AFFF"))
)

// renderBookTable prints one page of entries as a table.
func renderBookTable(entries []state.Entry) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "AUTHOR", "CREATED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, e := range entries {
		t.Row(
			strconv.FormatInt(e.ID, 10),
			truncateRunes(e.Title, titleColumnWidth),
			e.Author,
			e.CreatedAt,
		)
	}
	return t.Render()
}

// renderBook prints every projected field of one book.
func renderBook(e state.Entry) string {
	var b strings.Builder
	field := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(" ")
		b.WriteString(value)
		b.WriteString("\n")
	}
	field("ID:     ", strconv.FormatInt(e.ID, 10))
	field("Title:  ", e.Title)
	field("Author: ", e.Author)
	field("Created:", e.CreatedAt)
	field("Cover:  ", e.Image)
	if e.Owner != "" {
		field("Owner:  ", e.Owner)
	}
	b.WriteString("\n")
	b.WriteString(e.Summary)
	b.WriteString("\n")
	return b.String()
}

// renderLogLine colors one JSON log line. Other lines pass through.
func renderLogLine(line string) string {
	e, ok := logging.ParseEntry(line)
	if !ok {
		return line
	}
	level := fmt.Sprintf("%-5s", e.Level)
	if style, ok := levelStyles[e.Level]; ok {
		level = style.Render(level)
	}
	parts := []string{timeStyle.Render(e.Time), level, e.Message}
	for _, f := range e.Fields {
		parts = append(parts, fieldStyle.Render(f))
	}
	return strings.Join(parts, " ")
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
