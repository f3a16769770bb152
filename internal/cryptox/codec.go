// Package cryptox implements the at-rest encryption of log content.
//
// Content is stored as "hex(iv):hex(ciphertext)" (AES-256-CBC, random IV per
// call). Anything that does not match that shape is treated as legacy
// plaintext and passed through unchanged, so old unencrypted rows keep
// working after the codec was introduced.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"
)

var errInvalidPadding = errors.New("invalid padding")

// DefaultSecret is used when no encryption secret is configured. It is a
// known weakness kept for compatibility with existing deployments; any real
// installation must override it.
const DefaultSecret = "default-secret-key-change-in-production"

// keySalt is fixed: the key must be derivable from the secret alone, for the
// whole process lifetime. Changing it makes every stored row undecryptable.
var keySalt = []byte("lifeos-content-key-v1")

// ivHexLen is the length of the hex-encoded IV segment (16 bytes).
const ivHexLen = 32

// Codec encrypts and decrypts log content with a key derived once from a
// process-wide secret. A Codec is immutable and safe for concurrent use.
type Codec struct {
	key []byte
}

// NewCodec derives a 256-bit AES key from secret via argon2id with a fixed
// salt. An empty secret falls back to DefaultSecret.
func NewCodec(secret string) *Codec {
	if secret == "" {
		secret = DefaultSecret
	}
	return &Codec{key: DeriveKey([]byte(secret), keySalt)}
}

// DeriveKey stretches a secret into a 32-byte AES key (argon2id).
func DeriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}

// Encrypt returns plaintext in the "hex(iv):hex(ciphertext)" wire format,
// with a fresh random IV per call. The empty string is returned as-is and is
// never encrypted.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. The second return value reports whether s was
// actually decrypted: when s does not have the wire shape, or decryption
// fails for any reason (wrong key, corrupted data), Decrypt returns s
// unchanged with ok=false. It never returns an error: a single bad row must
// not break listing every other row.
func (c *Codec) Decrypt(s string) (plaintext string, ok bool) {
	if s == "" {
		return "", true
	}
	if !IsEncrypted(s) {
		return s, false
	}

	parts := strings.SplitN(s, ":", 2)
	iv, err := hex.DecodeString(parts[0])
	if err != nil {
		return s, false
	}
	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return s, false
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return s, false
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	out, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return s, false
	}
	return string(out), true
}

// IsEncrypted reports whether s has the wire shape: two colon-delimited
// segments with a first segment of exactly 32 hex characters. It does not
// verify that the ciphertext decrypts.
func IsEncrypted(s string) bool {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return false
	}
	if len(parts[0]) != ivHexLen {
		return false
	}
	_, err := hex.DecodeString(parts[0])
	return err == nil
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, errInvalidPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, errInvalidPadding
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, errInvalidPadding
		}
	}
	return b[:len(b)-n], nil
}
