// Package cryptox implements password hashing for stored credentials.
//
// Hashes are argon2id, encoded in the PHC string format
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// with unpadded standard base64 for salt and key, so the parameters used
// for a hash travel with it and can be raised later without a migration.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Params are the argon2id cost parameters.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultParams match the key derivation settings used elsewhere in the
// project: one pass over 64 MiB with four lanes.
var DefaultParams = Params{Time: 1, Memory: 64 * 1024, Threads: 4, SaltLen: 16, KeyLen: 32}

var errMalformedHash = errors.New("malformed password hash")

// randRead is a seam for tests.
var randRead = rand.Read

// Hasher hashes and verifies passwords with fixed parameters.
type Hasher struct {
	params Params
}

func NewHasher(p Params) *Hasher {
	return &Hasher{params: p}
}

// Hash derives a PHC-encoded argon2id hash with a fresh random salt, so two
// calls with the same password never return the same string.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := randRead(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encoded. The parameters are read
// from encoded, not from h. A malformed hash is a mismatch.
func (h *Hasher) Verify(password, encoded string) bool {
	p, salt, key, err := decode(encoded)
	if err != nil {
		return false
	}
	candidate := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(candidate, key) == 1
}

func decode(encoded string) (Params, []byte, []byte, error) {
	var p Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, errMalformedHash
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, errMalformedHash
	}
	if p.Time == 0 || p.Memory == 0 || p.Threads == 0 {
		return p, nil, nil, errMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, errMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, errMalformedHash
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))

	return p, salt, key, nil
}

var defaultHasher = NewHasher(DefaultParams)

// HashPassword hashes with DefaultParams.
func HashPassword(password string) (string, error) {
	return defaultHasher.Hash(password)
}

// VerifyPassword checks password against a hash produced by any Hasher.
func VerifyPassword(password, encoded string) bool {
	return defaultHasher.Verify(password, encoded)
}
