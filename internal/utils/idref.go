package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"
)

// IDCodec turns numeric product ids into opaque URL-safe references and back.
type IDCodec struct {
	block cipher.Block
}

func NewIDCodec(key string) (*IDCodec, error) {
	k := []byte(key)
	if len(k) != 16 && len(k) != 24 && len(k) != 32 {
		return nil, fmt.Errorf("invalid key length: %d (must be 16/24/32)", len(k))
	}
	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, err
	}
	return &IDCodec{block: block}, nil
}

func (c *IDCodec) Encode(id uint) (string, error) {
	plaintext := []byte(strconv.FormatUint(uint64(id), 10))
	ciphertext := make([]byte, aes.BlockSize+len(plaintext))

	// random IV, so the same id never encodes the same way twice
	iv := ciphertext[:aes.BlockSize]
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to read random iv: %w", err)
	}
	stream := cipher.NewCFBEncrypter(c.block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], plaintext)

	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// Decode accepts a reference made by Encode or a plain decimal id.
func (c *IDCodec) Decode(ref string) (uint, error) {
	if ref == "" {
		return 0, fmt.Errorf("empty id reference")
	}
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil && len(ref) < 12 {
		return uint(id), nil
	}

	ciphertext, err := base64.RawURLEncoding.DecodeString(ref)
	if err != nil {
		return 0, fmt.Errorf("decode base64 failed: %w", err)
	}
	if len(ciphertext) <= aes.BlockSize {
		return 0, fmt.Errorf("ciphertext too short: len=%d", len(ciphertext))
	}

	iv := ciphertext[:aes.BlockSize]
	body := ciphertext[aes.BlockSize:]
	plaintext := make([]byte, len(body))
	stream := cipher.NewCFBDecrypter(c.block, iv)
	stream.XORKeyStream(plaintext, body)

	id, err := strconv.ParseUint(string(plaintext), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse id failed: %w", err)
	}
	return uint(id), nil
}
