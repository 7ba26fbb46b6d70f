package service

import (
	"errors"
	"testing"
)

func TestSealerRoundtrip(t *testing.T) {
	s, err := NewSealer("clave-de-prueba")
	if err != nil {
		t.Fatalf("new sealer failed: %v", err)
	}
	sealed, err := s.Seal("eyJhbGciOiJIUzI1NiJ9.token-del-backend")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	plain, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if plain != "eyJhbGciOiJIUzI1NiJ9.token-del-backend" {
		t.Fatalf("unexpected plaintext: %q", plain)
	}
}

func TestSealerHexKey(t *testing.T) {
	hexKey := "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	s, err := NewSealer(hexKey)
	if err != nil {
		t.Fatalf("new sealer with hex key failed: %v", err)
	}
	sealed, err := s.Seal("token")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if plain, err := s.Open(sealed); err != nil || plain != "token" {
		t.Fatalf("open = %q, %v", plain, err)
	}
}

func TestSealerRejectsEmptyKey(t *testing.T) {
	if _, err := NewSealer("   "); !errors.Is(err, ErrSealKeyInvalid) {
		t.Fatalf("empty key should be rejected, got %v", err)
	}
}

func TestSealerRejectsTampered(t *testing.T) {
	s, err := NewSealer("clave-de-prueba")
	if err != nil {
		t.Fatalf("new sealer failed: %v", err)
	}
	sealed, err := s.Seal("token")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xff
	if _, err := s.Open(sealed); !errors.Is(err, ErrSealedTokenInvalid) {
		t.Fatalf("tampered token should fail, got %v", err)
	}

	other, err := NewSealer("otra-clave")
	if err != nil {
		t.Fatalf("new sealer failed: %v", err)
	}
	sealed, _ = s.Seal("token")
	if _, err := other.Open(sealed); !errors.Is(err, ErrSealedTokenInvalid) {
		t.Fatalf("wrong key should fail, got %v", err)
	}

	if _, err := s.Open([]byte{1, 2, 3}); !errors.Is(err, ErrSealedTokenInvalid) {
		t.Fatalf("short payload should fail, got %v", err)
	}
}
