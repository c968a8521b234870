package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/workpad/pkg/domain"
	"github.com/aretw0/workpad/pkg/ports"
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

// envelopePageID marks the single page of an encrypted envelope.
const envelopePageID = "__encrypted__"

type encryptionMiddleware struct {
	next   ports.WorkpadStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts workpads using AES-GCM.
// The stored document is an opaque envelope that keeps only the ID and name.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.WorkpadStore) ports.WorkpadStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, wp *domain.Workpad) error {
	plainText, err := json.Marshal(wp)
	if err != nil {
		return fmt.Errorf("failed to marshal workpad: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt workpad: %w", err)
	}

	page := domain.NewPage(envelopePageID)
	page.Elements = []domain.Element{{
		ID:         envelopePageID,
		Expression: base64.StdEncoding.EncodeToString(ciphertext),
	}}
	envelope := domain.NewWorkpad(wp.ID, page)
	envelope.Name = wp.Name

	return m.next.Save(ctx, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, id string) (*domain.Workpad, error) {
	envelope, err := m.next.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	encryptedStr, ok := sealedPayload(envelope)
	if !ok {
		// Fail closed: a plain document under an encrypting store is rejected.
		return nil, errors.New("workpad is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encryptedStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt workpad: %w", err)
	}

	var wp domain.Workpad
	if err := json.Unmarshal(plainText, &wp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted workpad: %w", err)
	}
	return &wp, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func sealedPayload(envelope *domain.Workpad) (string, bool) {
	if len(envelope.Pages) != 1 || envelope.Pages[0].ID != envelopePageID {
		return "", false
	}
	els := envelope.Pages[0].Elements
	if len(els) != 1 || els[0].ID != envelopePageID {
		return "", false
	}
	return els[0].Expression, true
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	// Try active key first
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	// Try fallbacks in order
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
