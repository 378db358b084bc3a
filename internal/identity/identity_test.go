package identity

import (
	"strings"
	"testing"
)

func TestNewItemIDUnique(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := NewItemID()
		if id == "" {
			t.Fatal("empty id")
		}
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestShortCodeDeterministic(t *testing.T) {
	id := "a0b1c2d3-e4f5-6789-abcd-ef0123456789"
	code := ShortCode(id)
	if code != "A0B1C2D3" {
		t.Fatalf("ShortCode = %q", code)
	}
	if again := ShortCode(id); again != code {
		t.Fatalf("short code not deterministic: %q vs %q", code, again)
	}
	if ShortCode("a0b1c2d3e4f56789abcdef0123456789") != code {
		t.Fatal("expected dash-insensitive derivation")
	}
}

func TestShortCodeTooShort(t *testing.T) {
	if got := ShortCode("abc"); got != "" {
		t.Fatalf("expected empty code, got %q", got)
	}
}

func TestLooksLikeShortCode(t *testing.T) {
	cases := map[string]bool{
		"A0B1C2D3":  true,
		"a0b1c2d3":  true,
		" A0B1C2D3": true,
		"A0B1C2":    false,
		"A0B1C2D3E": false,
		"G0B1C2D3":  false,
		"":          false,
	}
	for input, want := range cases {
		if got := LooksLikeShortCode(input); got != want {
			t.Errorf("LooksLikeShortCode(%q) = %v, want %v", input, got, want)
		}
	}
	long := strings.Repeat("a", 36)
	if LooksLikeShortCode(long) {
		t.Fatal("full-length id should not look like a short code")
	}
}
