package slug

import (
	"strings"
	"testing"
)

func TestGenerateLengthAndAlphabet(t *testing.T) {
	gen := New(10)
	id, err := gen.Generate()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(id) != 10 {
		t.Errorf("length = %d, want 10", len(id))
	}
	for _, char := range id {
		if !strings.ContainsRune(defaultSymbols, char) {
			t.Errorf("id %q contains character %q outside the alphabet", id, char)
		}
	}
}

func TestGenerateDefaultsBadLength(t *testing.T) {
	gen := New(0)
	id, err := gen.Generate()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(id) != 10 {
		t.Errorf("length = %d, want default 10", len(id))
	}
}

func TestGenerateUniqueness(t *testing.T) {
	gen := New(10)
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, err := gen.Generate()
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %q", id)
		}
		seen[id] = true
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"abcDEF2345", true},
		{"abcd", true},
		{"abc", false},              // too short
		{strings.Repeat("a", 22), false}, // too long
		{"abc_def234", false},       // underscore not in alphabet
		{"abc def234", false},       // whitespace
		{"abcO0Il123", false},       // ambiguous characters excluded
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValid(tt.id); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
