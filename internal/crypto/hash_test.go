package crypto

import (
	"encoding/hex"
	"testing"
)

func TestGenericHashDeterministic(t *testing.T) {
	h1 := GenericHash("bsk_abc123")
	h2 := GenericHash("bsk_abc123")
	if h1 != h2 {
		t.Fatalf("hash not deterministic: %q vs %q", h1, h2)
	}
	if len(h1) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h1))
	}
}

func TestGenericHashDiffersPerInput(t *testing.T) {
	if GenericHash("a") == GenericHash("b") {
		t.Fatal("different inputs produced the same hash")
	}
}

func TestKeyFromHexRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	parsed, err := KeyFromHex(hex.EncodeToString(key))
	if err != nil {
		t.Fatalf("KeyFromHex: %v", err)
	}
	if len(parsed) != 32 {
		t.Fatalf("expected 32-byte key, got %d", len(parsed))
	}
}

func TestKeyFromHexRejectsShortKey(t *testing.T) {
	if _, err := KeyFromHex("abcd"); err == nil {
		t.Fatal("expected error for short key")
	}
}

func TestKeyFromHexRejectsInvalidHex(t *testing.T) {
	if _, err := KeyFromHex("zz"); err == nil {
		t.Fatal("expected error for invalid hex")
	}
}
