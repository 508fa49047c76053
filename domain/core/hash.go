package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// DatasetHash fingerprints a loaded table so identical reloads can be detected
type DatasetHash Hash

// NewDatasetHash computes a fingerprint over the table's headers and row cells.
// The separator bytes keep ["ab","c"] and ["a","bc"] from colliding.
func NewDatasetHash(headers []string, rows []map[string]string) DatasetHash {
	var b strings.Builder
	for _, h := range headers {
		b.WriteString(h)
		b.WriteByte(0x1f)
	}
	b.WriteByte(0x1e)
	for _, row := range rows {
		for _, h := range headers {
			b.WriteString(row[h])
			b.WriteByte(0x1f)
		}
		b.WriteByte(0x1e)
	}
	return DatasetHash(NewHash([]byte(b.String())))
}

func (h DatasetHash) String() string { return Hash(h).String() }
