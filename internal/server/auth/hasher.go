// Package auth holds the credential primitives: one-way PIN hashing and
// signed session tokens.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/bpay/bpay/internal/common"
)

// SecretHasher turns a plaintext PIN into a storable hash and checks
// candidates against it.
type SecretHasher interface {
	// Hash returns a salted hash; two calls with the same input differ.
	Hash(plain string) (string, error)

	// Verify reports whether plain matches hash. A malformed hash is a
	// mismatch, not an error.
	Verify(plain, hash string) bool
}

const argon2idPrefix = "$argon2id$"

// BcryptHasher implements SecretHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt hasher with the given work factor.
func NewBcryptHasher(cost int) *BcryptHasher {
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").
			With("algorithm", "bcrypt").
			Wrap(errors.Join(common.ErrHashing, err))
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Argon2Params are the argon2id tuning knobs.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	SaltLen int
	KeyLen  uint32
}

// DefaultArgon2Params are the OWASP-recommended argon2id settings.
var DefaultArgon2Params = Argon2Params{
	Time:    1,
	Memory:  64 * 1024,
	Threads: 4,
	SaltLen: 16,
	KeyLen:  32,
}

// Argon2idHasher implements SecretHasher with argon2id and PHC-encoded output:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
type Argon2idHasher struct {
	params Argon2Params
}

func NewArgon2idHasher(p Argon2Params) *Argon2idHasher {
	return &Argon2idHasher{params: p}
}

func (h *Argon2idHasher) Hash(plain string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").
			With("algorithm", "argon2id").
			Wrap(errors.Join(common.ErrHashing, err))
	}

	key := argon2.IDKey([]byte(plain), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idPrefix,
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2idHasher) Verify(plain, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}
	if threads == 0 || threads > 255 || time == 0 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 || len(expected) > 1024 {
		return false
	}

	computed := argon2.IDKey([]byte(plain), salt, time, memory, uint8(threads), uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// Hasher hashes with one configured algorithm but verifies hashes produced by
// either, so stored records survive a change of HashAlgorithm.
type Hasher struct {
	primary SecretHasher
	bcrypt  *BcryptHasher
	argon2  *Argon2idHasher
}

// NewSecretHasher returns a Hasher whose Hash uses algorithm
// ("bcrypt" or "argon2id"). cost only applies to bcrypt.
func NewSecretHasher(algorithm string, cost int) (*Hasher, error) {
	h := &Hasher{
		bcrypt: NewBcryptHasher(cost),
		argon2: NewArgon2idHasher(DefaultArgon2Params),
	}

	switch algorithm {
	case "bcrypt":
		h.primary = h.bcrypt
	case "argon2id":
		h.primary = h.argon2
	default:
		return nil, oops.Code("AUTH_UNKNOWN_ALGORITHM").Errorf("unknown hash algorithm %q", algorithm)
	}
	return h, nil
}

func (h *Hasher) Hash(plain string) (string, error) {
	return h.primary.Hash(plain)
}

func (h *Hasher) Verify(plain, hash string) bool {
	if strings.HasPrefix(hash, argon2idPrefix) {
		return h.argon2.Verify(plain, hash)
	}
	return h.bcrypt.Verify(plain, hash)
}
