package shared

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	t.Run("returns a v4 uuid", func(t *testing.T) {
		id := GenerateID()
		if len(id) != 36 {
			t.Errorf("expected 36 character id, got %d (%s)", len(id), id)
		}
		if id == GenerateID() {
			t.Error("expected distinct ids from successive calls")
		}
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello")
		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
	})

	t.Run("nil writer defaults to stderr", func(t *testing.T) {
		logger := NewLogger(nil)
		if logger == nil {
			t.Fatal("expected logger")
		}
	})
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]string{"key": "value"}

	t.Run("compact output", func(t *testing.T) {
		out, err := MarshalJSON(data, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(out) != `{"key":"value"}` {
			t.Errorf("unexpected output: %s", out)
		}
	})

	t.Run("pretty output is indented", func(t *testing.T) {
		out, err := MarshalJSON(data, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(out), "\n  ") {
			t.Errorf("expected indented output, got %s", out)
		}
	})

	t.Run("unmarshalable value returns error", func(t *testing.T) {
		if _, err := MarshalJSON(make(chan int), false); err == nil {
			t.Error("expected error for channel value")
		}
	})
}

func TestFormatKB(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"exact kilobytes", 2048, "2 KB"},
		{"rounds down below half", 1400, "1 KB"},
		{"rounds up at half", 1536, "2 KB"},
		{"small file rounds to zero", 100, "0 KB"},
		{"zero size is unknown", 0, ""},
		{"negative size is unknown", -1, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatKB(tc.bytes); got != tc.want {
				t.Errorf("FormatKB(%d) = %q, want %q", tc.bytes, got, tc.want)
			}
		})
	}
}

func TestAuthError(t *testing.T) {
	t.Run("wraps ErrAuthFailed", func(t *testing.T) {
		err := NewAuthError("EMAIL_EXISTS")
		if !errors.Is(err, ErrAuthFailed) {
			t.Error("expected AuthError to wrap ErrAuthFailed")
		}
	})

	t.Run("known code maps to friendly message", func(t *testing.T) {
		err := NewAuthError("INVALID_PASSWORD")
		if !strings.Contains(err.Error(), "Incorrect password") {
			t.Errorf("unexpected message: %s", err.Error())
		}
	})

	t.Run("unknown code falls back to the raw code", func(t *testing.T) {
		err := NewAuthError("SOMETHING_ELSE")
		if !strings.Contains(err.Error(), "SOMETHING_ELSE") {
			t.Errorf("expected raw code in message, got %s", err.Error())
		}
	})
}
