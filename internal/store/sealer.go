package store

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// Sealer encrypts bearer tokens before they reach the storage backend.
type Sealer struct {
	key [32]byte
}

// NewSealer derives the box key from secret with HKDF-SHA256.
func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("sealer: empty secret")
	}
	s := &Sealer{}
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("centum-portal/storage"))
	if _, err := io.ReadFull(r, s.key[:]); err != nil {
		return nil, fmt.Errorf("sealer: derive key: %w", err)
	}
	return s, nil
}

func (s *Sealer) Seal(plain string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	out := secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", err
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", errors.New("sealed value too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", errors.New("sealed value failed authentication")
	}
	return string(plain), nil
}
