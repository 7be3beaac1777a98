package checksum

import (
	"io"
	"strings"
	"testing"
)

const helloSHA256 = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func TestSum(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// echo -n "hello" | sha256sum
		{"hello", "hello", helloSHA256},
		{"empty", "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sum([]byte(tt.input)); got != tt.want {
				t.Errorf("Sum(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCalculateSHA256(t *testing.T) {
	t.Run("matches Sum", func(t *testing.T) {
		record := `{"id":42,"action":"CREATED","entity":"alumnos"}`
		got, err := CalculateSHA256(strings.NewReader(record))
		if err != nil {
			t.Fatalf("CalculateSHA256() error: %v", err)
		}
		if got != Sum([]byte(record)) {
			t.Errorf("CalculateSHA256() = %q, want Sum() result", got)
		}
	})

	t.Run("read error is propagated", func(t *testing.T) {
		if _, err := CalculateSHA256(errReader{}); err == nil {
			t.Error("CalculateSHA256() expected error from failing reader, got nil")
		}
	})
}

func TestVerifySHA256(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		want     bool
	}{
		{"matching checksum", helloSHA256, true},
		{"sidecar content with newline", helloSHA256 + "\n", true},
		{"uppercase hex", strings.ToUpper(helloSHA256), true},
		{"wrong checksum", strings.Repeat("0", 64), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := VerifySHA256(strings.NewReader("hello"), tt.expected)
			if err != nil {
				t.Fatalf("VerifySHA256() error: %v", err)
			}
			if ok != tt.want {
				t.Errorf("VerifySHA256() = %v, want %v", ok, tt.want)
			}
		})
	}

	t.Run("read error is propagated", func(t *testing.T) {
		if _, err := VerifySHA256(errReader{}, "anyvalue"); err == nil {
			t.Error("VerifySHA256() expected error from failing reader, got nil")
		}
	})
}

// errReader is an io.Reader that always returns an error.
type errReader struct{}

func (errReader) Read(_ []byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
