package code_test

import (
	"strings"
	"testing"

	"github.com/telefiles/filestore-bot/internal/service/code"
)

func TestGenerate_LengthAndAlphabet(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	for i := 0; i < 100; i++ {
		c, err := code.Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if len(c) != code.Length {
			t.Fatalf("code length = %d, want %d", len(c), code.Length)
		}
		for _, r := range c {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("code %q contains unexpected rune %q", c, r)
			}
		}
		if !code.Valid(c) {
			t.Fatalf("generated code %q does not pass Valid", c)
		}
	}
}

func TestGenerate_NotConstant(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		c, err := code.Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		seen[c] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected distinct codes, got %d unique of 50", len(seen))
	}
}

func TestValid(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"ABC12345", true},
		{"my-file_1", true},
		{"abc", true},
		{"ab", false},
		{"", false},
		{"has space", false},
		{"семь", false},
		{"slash/code", false},
		{strings.Repeat("A", 64), true},
		{strings.Repeat("A", 65), false},
	}

	for _, tc := range cases {
		if got := code.Valid(tc.in); got != tc.want {
			t.Errorf("Valid(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
