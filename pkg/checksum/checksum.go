// Package checksum provides SHA-256 helpers used to fingerprint archived audit
// records so that a copy in object storage can be checked against the row it
// was made from.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Sum returns the lowercase hex SHA-256 of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// CalculateSHA256 calculates the SHA-256 checksum of everything read from reader.
func CalculateSHA256(reader io.Reader) (string, error) {
	hasher := sha256.New()
	if _, err := io.Copy(hasher, reader); err != nil {
		return "", fmt.Errorf("failed to calculate checksum: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// VerifySHA256 reports whether the content of reader hashes to expected.
// The comparison ignores case and surrounding whitespace, so the content of a
// ".sha256" sidecar file can be passed as is.
func VerifySHA256(reader io.Reader, expected string) (bool, error) {
	actual, err := CalculateSHA256(reader)
	if err != nil {
		return false, err
	}
	return actual == strings.ToLower(strings.TrimSpace(expected)), nil
}
