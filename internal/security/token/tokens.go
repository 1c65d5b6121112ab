// Package token generates opaque credentials and device keys.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// deviceKeyLen bounds the derived device key. 24 base64url chars of a
// sha256 digest are plenty for a session partition key.
const deviceKeyLen = 24

// GenerateOpaque returns a random token of nBytes entropy, base64url
// encoded without padding. Used for refresh token values.
func GenerateOpaque(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DeviceKey derives a stable per-device identifier from the client's
// User-Agent string. It only partitions sessions; it is not a security
// boundary and the input is attacker-controlled.
func DeviceKey(userAgent string) string {
	ua := strings.TrimSpace(userAgent)
	if ua == "" {
		ua = "unknown"
	}
	sum := sha256.Sum256([]byte(ua))
	return base64.RawURLEncoding.EncodeToString(sum[:])[:deviceKeyLen]
}
