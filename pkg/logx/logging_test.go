package logx

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"WARNING", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in, zerolog.InfoLevel); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFormatChatLine(t *testing.T) {
	t.Parallel()

	line := `{"level":"warn","time":"2025-11-08T05:00:00Z","message":"trigger failed","trigger":"football_401520001"}`
	got := formatChatLine([]byte(line))

	if !strings.HasPrefix(got, "[WARN] trigger failed") {
		t.Fatalf("formatted = %q", got)
	}
	if !strings.Contains(got, "trigger=football_401520001") {
		t.Fatalf("field missing: %q", got)
	}
	if strings.Contains(got, "time=") {
		t.Fatalf("time field should be dropped: %q", got)
	}
}

func TestFormatChatLineNonJSON(t *testing.T) {
	t.Parallel()

	got := formatChatLine([]byte("plain text line\n"))
	if got != "plain text line" {
		t.Fatalf("formatted = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", maxChatLine+100)
	got := truncate(long, maxChatLine)
	if len(got) != maxChatLine {
		t.Fatalf("len = %d, want %d", len(got), maxChatLine)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatal("missing ellipsis")
	}
	if s := truncate("short", maxChatLine); s != "short" {
		t.Fatalf("short input changed: %q", s)
	}
}

func TestLoggerWithFields(t *testing.T) {
	t.Parallel()

	base := Nop().With(String("comp", "test"))
	child := base.With(Int("n", 1))

	// With must not mutate the parent.
	if len(base.fields) != 1 {
		t.Fatalf("parent fields = %d, want 1", len(base.fields))
	}
	if len(child.fields) != 2 {
		t.Fatalf("child fields = %d, want 2", len(child.fields))
	}
}
