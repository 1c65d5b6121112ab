// Package password implements one-way credential hashing with argon2id.
//
// Hashes are stored in PHC string format so parameters can change over time
// without invalidating existing records.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Params tunes the argon2id cost.
type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// Default is a server-side interactive profile.
var Default = Params{Memory: 64 * 1024, Time: 3, Parallelism: 1, SaltLen: 16, KeyLen: 32}

// Hash derives a PHC string ($argon2id$v=19$m=...,t=...,p=...$salt$key)
// from plain using Default params and a fresh random salt.
func Hash(plain string) (string, error) {
	return HashWith(Default, plain)
}

// HashWith is Hash with explicit params.
func HashWith(p Params, plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("password: empty plaintext")
	}
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify checks plain against a PHC hash in constant time with respect to
// the derived key. Malformed hashes verify as false, never as an error:
// callers treat any mismatch identically.
func Verify(plain, phc string) bool {
	// "" | "argon2id" | "v=19" | "m=...,t=...,p=..." | salt | key
	parts := strings.Split(phc, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}
	var version int
	if n, _ := fmt.Sscanf(parts[2], "v=%d", &version); n != 1 || version != argon2.Version {
		return false
	}
	var memory, timeCost, parallelism int
	if n, _ := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &parallelism); n != 3 {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(plain), salt, uint32(timeCost), uint32(memory), uint8(parallelism), uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}

