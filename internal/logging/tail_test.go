package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestTail(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	var content strings.Builder
	var all []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		all = append(all, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "read all (0)", maxLines: 0, expected: all},
		{name: "read all (negative)", maxLines: -1, expected: all},
		{name: "read partial (5)", maxLines: 5, expected: all[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: all},
		{name: "read more than exists (20)", maxLines: 20, expected: all},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tail(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Tail() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Tail() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTail_MissingFile(t *testing.T) {
	lines, err := Tail(filepath.Join(t.TempDir(), "nope.log"), 5)
	if err != nil || lines != nil {
		t.Fatalf("Tail(missing) = %v, %v; want nil, nil", lines, err)
	}
}

func TestParseEntry_RoundTripsLoggerOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.log")
	logger, err := New(path, "info", false)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("update failed", zap.Int64("book_id", 7), zap.String("view", "works"))
	_ = logger.Sync()

	lines, err := Tail(path, 1)
	if err != nil || len(lines) != 1 {
		t.Fatalf("Tail = %v, %v", lines, err)
	}
	e, ok := ParseEntry(lines[0])
	if !ok {
		t.Fatalf("ParseEntry rejected %q", lines[0])
	}
	if e.Level != "WARN" || e.Message != "update failed" || e.Time == "" {
		t.Fatalf("entry = %+v", e)
	}
	if want := []string{"book_id=7", "view=works"}; !reflect.DeepEqual(e.Fields, want) {
		t.Fatalf("fields = %v, want %v", e.Fields, want)
	}
}

func TestParseEntry_PlainText(t *testing.T) {
	if _, ok := ParseEntry("not json at all"); ok {
		t.Fatalf("plain text parsed as an entry")
	}
}
