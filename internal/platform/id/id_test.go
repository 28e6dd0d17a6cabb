package id

import (
	"encoding/base32"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func decodeID(t *testing.T, value string) uuid.UUID {
	t.Helper()
	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.ToUpper(value))
	if err != nil {
		t.Fatalf("decode id %q: %v", value, err)
	}
	decoded, err := uuid.FromBytes(raw)
	if err != nil {
		t.Fatalf("id %q does not hold a uuid: %v", value, err)
	}
	return decoded
}

func TestNewIDIsLowercaseBase32(t *testing.T) {
	value, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if len(value) != 26 {
		t.Fatalf("expected 26 characters, got %d (%q)", len(value), value)
	}
	if value != strings.ToLower(value) {
		t.Fatalf("expected lowercase id, got %q", value)
	}
	if strings.Contains(value, "=") {
		t.Fatalf("expected unpadded encoding, got %q", value)
	}
	decodeID(t, value)
}

func TestNewIDEncodesRandomUUID(t *testing.T) {
	value, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	decoded := decodeID(t, value)
	if decoded.Version() != 4 {
		t.Fatalf("expected a v4 uuid, got version %d", decoded.Version())
	}
	if decoded.Variant() != uuid.RFC4122 {
		t.Fatalf("expected RFC 4122 variant, got %v", decoded.Variant())
	}
}

func TestNewIDDoesNotRepeat(t *testing.T) {
	seen := make(map[string]bool)
	for range 64 {
		value, err := NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if seen[value] {
			t.Fatalf("id %q repeated", value)
		}
		seen[value] = true
	}
}
