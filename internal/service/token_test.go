package service

import (
	"regexp"
	"testing"
)

func TestDeterministicTokenGenerator(t *testing.T) {
	gen := DeterministicTokenGenerator{}
	got := gen.Generate(12, 345)
	if got != "tk-00000012-00000345" {
		t.Fatalf("unexpected token: %s", got)
	}
	if gen.Generate(12, 345) != got {
		t.Fatalf("deterministic token must be stable per pair")
	}
	if gen.Generate(345, 12) == got {
		t.Fatalf("swapped pair must produce another token")
	}
}

func TestRandomTokenGenerator(t *testing.T) {
	pattern := regexp.MustCompile(`^tk-[0-9a-f]{24}$`)
	gen := RandomTokenGenerator{}
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		token := gen.Generate(1, 1)
		if !pattern.MatchString(token) {
			t.Fatalf("unexpected token format: %s", token)
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate random token: %s", token)
		}
		seen[token] = struct{}{}
	}
}

func TestNewTokenGenerator(t *testing.T) {
	if _, ok := NewTokenGenerator("random").(RandomTokenGenerator); !ok {
		t.Fatalf("random strategy should select RandomTokenGenerator")
	}
	if _, ok := NewTokenGenerator(" Deterministic ").(DeterministicTokenGenerator); !ok {
		t.Fatalf("deterministic strategy should select DeterministicTokenGenerator")
	}
	if _, ok := NewTokenGenerator("unknown").(DeterministicTokenGenerator); !ok {
		t.Fatalf("unknown strategy should fall back to deterministic")
	}
}
