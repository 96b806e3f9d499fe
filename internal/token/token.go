// Package token generates random identifiers from crypto/rand.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// Reader is the entropy source. Tests may replace it.
var Reader io.Reader = rand.Reader

// Hex returns n random bytes rendered as 2n lowercase hex characters.
func Hex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(Reader, buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
