// Package crypto holds the hashing and salting helpers used to protect the
// config file and sign outgoing webhook requests
package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"hash"
	"io"
)

// Hash types supported by GetHMAC
const (
	HashSHA256 = iota
	HashSHA512
)

var (
	errSaltTooSmall        = errors.New("salt length is too small")
	errUnsupportedHashType = errors.New("unsupported hash type")
)

// HexEncodeToString takes in a hexadecimal byte array and returns a string
func HexEncodeToString(input []byte) string {
	return hex.EncodeToString(input)
}

// GetRandomSalt returns input followed by saltLen random bytes
func GetRandomSalt(input []byte, saltLen int) ([]byte, error) {
	if saltLen <= 0 {
		return nil, errSaltTooSmall
	}
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	result := make([]byte, 0, len(input)+saltLen)
	result = append(result, input...)
	return append(result, salt...), nil
}

// GetHMAC returns a keyed-hash message authentication code using the desired
// hashtype
func GetHMAC(hashType int, input, key []byte) ([]byte, error) {
	var hasher func() hash.Hash
	switch hashType {
	case HashSHA256:
		hasher = sha256.New
	case HashSHA512:
		hasher = sha512.New
	default:
		return nil, errUnsupportedHashType
	}

	h := hmac.New(hasher, key)
	h.Write(input)
	return h.Sum(nil), nil
}
