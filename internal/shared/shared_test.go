package shared

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestFormatRuntime(t *testing.T) {
	tc := []struct {
		name    string
		minutes int
		want    string
	}{
		{name: "zero", minutes: 0, want: ""},
		{name: "negative", minutes: -5, want: ""},
		{name: "under an hour", minutes: 45, want: "0h 45m"},
		{name: "feature length", minutes: 125, want: "2h 5m"},
		{name: "exact hours", minutes: 120, want: "2h 0m"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRuntime(tt.minutes); got != tt.want {
				t.Errorf("FormatRuntime(%d) = %q, want %q", tt.minutes, got, tt.want)
			}
		})
	}
}

func TestReleaseYear(t *testing.T) {
	tc := []struct {
		date string
		want string
	}{
		{date: "1999-03-31", want: "1999"},
		{date: "", want: ""},
		{date: "99", want: ""},
		{date: " 2010-07-16 ", want: "2010"},
	}

	for _, tt := range tc {
		t.Run(tt.date, func(t *testing.T) {
			if got := ReleaseYear(tt.date); got != tt.want {
				t.Errorf("ReleaseYear(%q) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	t.Run("VisibilityString", func(t *testing.T) {
		if VisibilityString(true) != "Public" || VisibilityString(false) != "Private" {
			t.Error("unexpected visibility labels")
		}
	})

	t.Run("GenerateID", func(t *testing.T) {
		a, b := GenerateID(), GenerateID()
		if a == b {
			t.Error("expected unique ids")
		}
		if len(a) != 36 {
			t.Errorf("expected uuid string, got %q", a)
		}
	})

	t.Run("MarshalJSON", func(t *testing.T) {
		v := map[string]int{"a": 1}
		compact, err := MarshalJSON(v, false)
		if err != nil || string(compact) != `{"a":1}` {
			t.Errorf("compact = %s, %v", compact, err)
		}
		pretty, err := MarshalJSON(v, true)
		if err != nil || !strings.Contains(string(pretty), "\n  \"a\": 1") {
			t.Errorf("pretty = %s, %v", pretty, err)
		}
	})

	t.Run("ExpandHome", func(t *testing.T) {
		if got := ExpandHome("./local.db"); got != "./local.db" {
			t.Errorf("relative path should be unchanged, got %s", got)
		}
		got := ExpandHome("~/.marquee")
		if strings.HasPrefix(got, "~") || filepath.Base(got) != ".marquee" {
			t.Errorf("expected expanded path, got %s", got)
		}
	})

	t.Run("ParseLogLevel", func(t *testing.T) {
		if ParseLogLevel("DEBUG") != log.DebugLevel {
			t.Error("expected debug level")
		}
		if ParseLogLevel("chatty") != log.InfoLevel {
			t.Error("unknown level should fall back to info")
		}
	})

	t.Run("NewLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		WithLogger(logger, "component", "test").Info("hello")
		if !strings.Contains(buf.String(), "component=test") {
			t.Errorf("expected key-value in output, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		if _, err := NewFileLogger(""); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for empty path, got %v", err)
		}
		logger, err := NewFileLogger(filepath.Join(t.TempDir(), "logs", "tui.log"))
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		logger.Info("written")
	})
}

func TestValidate(t *testing.T) {
	type input struct {
		Username string `json:"username" validate:"required,min=3"`
		Email    string `json:"email" validate:"required,email"`
	}

	t.Run("valid", func(t *testing.T) {
		if err := Validate(input{Username: "demo", Email: "demo@example.com"}); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("reports each field", func(t *testing.T) {
		err := Validate(input{Username: "ab", Email: "nope"})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
		msg := err.Error()
		if !strings.Contains(msg, "username must be at least 3 characters long") {
			t.Errorf("missing username message in %q", msg)
		}
		if !strings.Contains(msg, "email must be a valid email") {
			t.Errorf("missing email message in %q", msg)
		}
	})

	t.Run("ErrInvalidName wraps ErrValidation", func(t *testing.T) {
		if !errors.Is(ErrInvalidName, ErrValidation) {
			t.Error("ErrInvalidName should wrap ErrValidation")
		}
	})
}

func TestBrowserCommand(t *testing.T) {
	tc := []struct {
		goos    string
		want    string
		wantErr bool
	}{
		{goos: "darwin", want: "open"},
		{goos: "linux", want: "xdg-open"},
		{goos: "windows", want: "rundll32"},
		{goos: "plan9", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.goos, func(t *testing.T) {
			name, args, err := browserCommand(tt.goos, "https://www.themoviedb.org/movie/603")
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if name != tt.want {
				t.Errorf("got %s, want %s", name, tt.want)
			}
			if args[len(args)-1] != "https://www.themoviedb.org/movie/603" {
				t.Errorf("url should be last argument, got %v", args)
			}
		})
	}

	t.Run("OpenBrowser unsupported", func(t *testing.T) {
		orig := getRuntime
		getRuntime = func() string { return "plan9" }
		defer func() { getRuntime = orig }()

		if err := OpenBrowser("https://example.com"); err == nil {
			t.Error("expected error on unsupported platform")
		}
	})
}
