package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"room-engine/errors"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for room passcodes. Passcodes are short lived and checked
// on every join of a private room, so memory is kept below the account defaults.
const (
	Memory      = 19 * 1024
	Iterations  = 2
	Parallelism = 1
	SaltLength  = 16
	KeyLength   = 32
)

// HashPasscode hashes a private room passcode as "$argon2id$v=..$m=..,t=..,p=..$salt$hash".
func HashPasscode(passcode string) (string, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(passcode), salt, Iterations, Memory, Parallelism, KeyLength)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, Memory, Iterations, Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// ComparePasscode checks a passcode against an encoded hash in constant time.
func ComparePasscode(passcode, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, errors.ErrInvalidPasscodeHash
	}

	var memory, iterations, parallelism int
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, fmt.Errorf("%w: %w", errors.ErrInvalidPasscodeHash, err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: %w", errors.ErrInvalidPasscodeHash, err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("%w: %w", errors.ErrInvalidPasscodeHash, err)
	}

	actual := argon2.IDKey([]byte(passcode), salt, uint32(iterations), uint32(memory), uint8(parallelism), uint32(len(expected)))
	return subtle.ConstantTimeCompare(expected, actual) == 1, nil
}
