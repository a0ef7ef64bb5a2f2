package bridge

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/billboard-cli/internal/domain"
	"golang.org/x/crypto/chacha20poly1305"
)

// Payload purposes. Each is bound into the associated data so a payload
// sealed for one slot of the protocol cannot be replayed into another.
const (
	PurposeApproval = "approval"
	PurposeEvent    = "event"
	PurposeRequest  = "request"
	PurposeResponse = "response"
)

var ErrPayloadRejected = errors.New("bridge payload failed authentication")

// Sealer encrypts and authenticates everything exchanged with the wallet
// under the pairing key. The bridge only ever sees ciphertext.
type Sealer struct {
	aead  cipher.AEAD
	topic string
}

func NewSealer(keyHex, topic string) (Sealer, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return Sealer{}, fmt.Errorf("%w: pairing key is not hex", domain.ErrSessionError)
	}
	if len(key) != chacha20poly1305.KeySize {
		return Sealer{}, fmt.Errorf("%w: pairing key must be %d bytes, got %d", domain.ErrSessionError, chacha20poly1305.KeySize, len(key))
	}
	if topic == "" {
		return Sealer{}, fmt.Errorf("%w: pairing topic is required", domain.ErrSessionError)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return Sealer{}, fmt.Errorf("init payload cipher: %w", err)
	}
	return Sealer{aead: aead, topic: topic}, nil
}

// Seal encodes v as JSON and returns base64(nonce || ciphertext).
func (s Sealer) Seal(purpose string, v interface{}) (string, error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s payload: %w", purpose, err)
	}

	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plain)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, plain, s.additionalData(purpose))
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open authenticates payload and decodes it into out.
func (s Sealer) Open(purpose string, payload string, out interface{}) error {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("%w: %s payload is not base64", ErrPayloadRejected, purpose)
	}
	if len(raw) < s.aead.NonceSize()+s.aead.Overhead() {
		return fmt.Errorf("%w: %s payload too short", ErrPayloadRejected, purpose)
	}

	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, s.additionalData(purpose))
	if err != nil {
		return fmt.Errorf("%w: %s payload", ErrPayloadRejected, purpose)
	}

	if err := json.Unmarshal(plain, out); err != nil {
		return fmt.Errorf("%w: decode %s payload: %w", domain.ErrSessionError, purpose, err)
	}
	return nil
}

func (s Sealer) additionalData(purpose string) []byte {
	return []byte("billboard/1|" + s.topic + "|" + purpose)
}
