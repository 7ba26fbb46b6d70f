package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// Sealer sella tokens bearer del backend para guardarlos en reposo
// Usa XChaCha20-Poly1305 con nonce aleatorio antepuesto al sellado
type Sealer struct {
	key []byte
}

// NewSealer crea el sellador a partir de la clave configurada
// Acepta 32 bytes en hex; cualquier otra cadena no vacía se deriva
// con SHA-256. Clave vacía no está permitida
func NewSealer(key string) (*Sealer, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty key", ErrSealKeyInvalid)
	}

	raw, err := hex.DecodeString(trimmed)
	if err != nil || len(raw) != chacha20poly1305.KeySize {
		sum := sha256.Sum256([]byte(trimmed))
		raw = sum[:]
	}
	return &Sealer{key: raw}, nil
}

// Seal sella un token
func (s *Sealer) Seal(token string) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	sealed := aead.Seal(nonce, nonce, []byte(token), nil)
	return sealed, nil
}

// Open abre un token sellado
func (s *Sealer) Open(sealed []byte) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize() {
		return "", ErrSealedTokenInvalid
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSealedTokenInvalid, err)
	}
	return string(plain), nil
}
