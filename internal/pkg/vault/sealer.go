package vault

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	KeySize   = 32
	nonceSize = 24
)

var (
	ErrInvalidKey    = errors.New("vault: ключ должен быть длиной 32 байта (или 64 hex символа)")
	ErrMalformedData = errors.New("vault: повреждённые данные")
	ErrDecrypt       = errors.New("vault: не удалось расшифровать данные")
)

// Sealer шифрует данные доступа, передаваемые продавцом, перед сохранением.
type Sealer struct {
	key [KeySize]byte
}

// NewSealer принимает ключ из 32 байт либо его hex-представление.
func NewSealer(secret string) (*Sealer, error) {
	raw := []byte(secret)
	if len(secret) == KeySize*2 {
		decoded, err := hex.DecodeString(secret)
		if err == nil {
			raw = decoded
		}
	}
	if len(raw) != KeySize {
		return nil, ErrInvalidKey
	}

	s := &Sealer{}
	copy(s.key[:], raw)
	return s, nil
}

// Seal возвращает nonce || secretbox(plaintext).
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("vault: не удалось сгенерировать nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &s.key), nil
}

func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, ErrMalformedData
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plaintext, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
