package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/taskdo/backend/internal/apperrors"
)

// ErrInvalidHash reported when a stored hash is malformed or was produced
// with unsupported parameters
var ErrInvalidHash = errors.New("invalid password hash")

// Argon2id cost parameters. Memory is in KiB as argon2.IDKey expects.
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var defaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// Argon2Hasher hashes passwords with Argon2id and encodes them as
// $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<key_b64>
// so every hash carries its own salt and cost parameters.
type Argon2Hasher struct {
	params Argon2Params
}

// DefaultHasher is used wherever the caller does not bring its own
var DefaultHasher = Argon2Hasher{params: defaultArgon2Params}

func NewArgon2Hasher(params Argon2Params) Argon2Hasher {
	return Argon2Hasher{params: params}
}

func (h Argon2Hasher) Hash(password string) (string, error) {
	p := h.params

	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("error while generating salt. Err: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	b64 := base64.RawStdEncoding
	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Iterations, p.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key),
	)

	return encoded, nil
}

// Compare recomputes the hash with the parameters and salt embedded in
// hashedPassword and compares in constant time.
// Mismatch returns apperrors.ErrIncorrectPassword.
func (h Argon2Hasher) Compare(hashedPassword string, password string) error {
	params, salt, expected, err := decodeHash(hashedPassword)
	if err != nil {
		return err
	}

	// Refuse to verify hashes demanding far more resources than we are
	// configured for: a stored hash is not a channel for cost injection
	if !withinCostBounds(params, h.params) {
		return ErrInvalidHash
	}

	key := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, uint32(len(expected)))

	if subtle.ConstantTimeCompare(key, expected) != 1 {
		return apperrors.ErrIncorrectPassword
	}

	return nil
}

func withinCostBounds(got Argon2Params, limits Argon2Params) bool {
	if got.Memory > limits.Memory*2 || got.Iterations > limits.Iterations*2 {
		return false
	}
	if got.Parallelism > limits.Parallelism*2 {
		return false
	}
	if got.SaltLength < 8 || got.SaltLength > 64 {
		return false
	}
	if got.KeyLength < 16 || got.KeyLength > 128 {
		return false
	}
	return true
}

func decodeHash(encoded string) (Argon2Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Argon2Params{}, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Argon2Params{}, nil, nil, ErrInvalidHash
	}

	var mem, iter uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iter, &par); err != nil {
		return Argon2Params{}, nil, nil, ErrInvalidHash
	}
	if mem == 0 || iter == 0 || par == 0 {
		return Argon2Params{}, nil, nil, ErrInvalidHash
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return Argon2Params{}, nil, nil, ErrInvalidHash
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil {
		return Argon2Params{}, nil, nil, ErrInvalidHash
	}

	params := Argon2Params{
		Memory:      mem,
		Iterations:  iter,
		Parallelism: par,
		SaltLength:  uint32(len(salt)),
		KeyLength:   uint32(len(key)),
	}

	return params, salt, key, nil
}
