// Package auth hashes credentials at rest with argon2id.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/dtroode/homescout/internal/model"
)

const (
	saltLen = 16
	keyLen  = 32
)

// ErrMalformedHash is returned when a stored hash cannot be parsed.
var ErrMalformedHash = errors.New("malformed password hash")

// KDFParams contains argon2id cost parameters.
type KDFParams struct {
	Time   uint32
	MemKiB uint32
	Par    uint8
}

// DefaultKDFParams returns the argon2id parameters recommended for interactive logins.
func DefaultKDFParams() KDFParams {
	return KDFParams{Time: 1, MemKiB: 64 * 1024, Par: 4}
}

var _ model.PasswordHasher = (*Argon2)(nil)

// Argon2 hashes passwords into PHC-formatted argon2id strings.
type Argon2 struct {
	params KDFParams
}

// NewArgon2 creates a hasher. Zero parameters fall back to DefaultKDFParams.
func NewArgon2(params KDFParams) *Argon2 {
	def := DefaultKDFParams()
	if params.Time == 0 {
		params.Time = def.Time
	}
	if params.MemKiB == 0 {
		params.MemKiB = def.MemKiB
	}
	if params.Par == 0 {
		params.Par = def.Par
	}
	return &Argon2{params: params}
}

// Hash derives a salted key and encodes it with its parameters.
func (a *Argon2) Hash(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, a.params.Time, a.params.MemKiB, a.params.Par, keyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		a.params.MemKiB, a.params.Time, a.params.Par,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches the encoded hash.
// The parameters stored in the hash are used, so old hashes keep verifying after a cost change.
func (a *Argon2) Verify(encoded, password string) (bool, error) {
	params, salt, key, err := decode(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, params.Time, params.MemKiB, params.Par, uint32(len(key)))

	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

func decode(encoded string) (KDFParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return KDFParams{}, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return KDFParams{}, nil, nil, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	if version != argon2.Version {
		return KDFParams{}, nil, nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedHash, version)
	}

	var params KDFParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.MemKiB, &params.Time, &params.Par); err != nil {
		return KDFParams{}, nil, nil, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return KDFParams{}, nil, nil, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return KDFParams{}, nil, nil, ErrMalformedHash
	}

	return params, salt, key, nil
}
