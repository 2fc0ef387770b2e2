// Package storage generates the opaque on-disk names and content digests the
// ingestion pipeline attaches to every upload.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// NewStorageToken returns a fresh 128-bit random token rendered as 32 hex
// characters. Tokens are independent of anything the client sent, so they can
// never carry path components or collide with a chosen name.
func NewStorageToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// ContentDigest returns the sha256 of data as a 64-char hex string.
func ContentDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
