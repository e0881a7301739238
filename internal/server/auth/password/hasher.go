// Package password provides one-way salted password hashing using argon2id.
//
// Every hash carries its own random salt and the parameters it was produced
// with, encoded in the standard form
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<digest>
//
// so verification works even after the configured cost changes. Digest
// comparison is constant-time.
package password

import (
	"encoding/base64"
	"fmt"
	"strings"

	"crypto/subtle"

	"github.com/mpetrenko/hrauth/internal/common"
	"golang.org/x/crypto/argon2"
)

// Safety floors. A Hasher configured below these refuses to construct;
// the check happens once at startup, not per call.
const (
	MinTime   = 1
	MinMemory = 32 * 1024 // KiB
)

// Params holds the argon2id cost parameters.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	SaltLen int
	KeyLen  uint32
}

// DefaultParams follow the OWASP recommendation for argon2id.
func DefaultParams() Params {
	return Params{
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
		SaltLen: 16,
		KeyLen:  32,
	}
}

// Hasher hashes and verifies passwords with argon2id.
type Hasher struct {
	params Params
	decoy  string
}

// NewHasher validates the cost parameters against the safety floor and
// returns a ready-to-use Hasher.
func NewHasher(p Params) (*Hasher, error) {
	if p.Time < MinTime {
		return nil, fmt.Errorf("%w: argon2 time cost %d below floor %d", common.ErrorConfiguration, p.Time, MinTime)
	}
	if p.Memory < MinMemory {
		return nil, fmt.Errorf("%w: argon2 memory cost %d KiB below floor %d KiB", common.ErrorConfiguration, p.Memory, MinMemory)
	}
	if p.Threads == 0 {
		return nil, fmt.Errorf("%w: argon2 threads must be positive", common.ErrorConfiguration)
	}
	if p.SaltLen < 8 || p.KeyLen < 16 {
		return nil, fmt.Errorf("%w: argon2 salt/key length too short", common.ErrorConfiguration)
	}

	h := &Hasher{params: p}

	// The decoy is derived once here. If it were hashed per call, the
	// unknown-login path would cost two derivations against the real path's
	// one, and the timing gap would reveal which logins exist.
	decoy, err := h.Hash(common.GenerateRandByteArray(32))
	if err != nil {
		return nil, err
	}
	h.decoy = decoy

	return h, nil
}

// Hash derives an argon2id digest of raw with a fresh random salt and returns
// the encoded hash string.
func (h *Hasher) Hash(raw []byte) (string, error) {
	salt := common.GenerateRandByteArray(h.params.SaltLen)

	digest := argon2.IDKey(raw, salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)
	return encoded, nil
}

// Verify re-derives the digest of raw using the salt and parameters stored in
// encoded and compares the result in constant time. It returns false (with a
// nil error) for a wrong password and an error only when encoded cannot be
// parsed.
func (h *Hasher) Verify(raw []byte, encoded string) (bool, error) {
	salt, digest, params, err := decode(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey(raw, salt, params.Time, params.Memory, params.Threads, uint32(len(digest)))

	return subtle.ConstantTimeCompare(candidate, digest) == 1, nil
}

// DecoyHash returns a syntactically valid hash of random material, fixed at
// construction time. Verifying a candidate against it always fails and costs
// exactly one derivation, the same as a real verification. Used to keep
// unknown-login and wrong-password timings alike.
func (h *Hasher) DecoyHash() string {
	return h.decoy
}

func decode(encoded string) (salt, digest []byte, p Params, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, p, fmt.Errorf("invalid argon2id hash format")
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, p, fmt.Errorf("parse argon2id version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, p, fmt.Errorf("unsupported argon2id version %d", version)
	}

	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return nil, nil, p, fmt.Errorf("parse argon2id params: %w", err)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, p, fmt.Errorf("decode salt: %w", err)
	}

	digest, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, p, fmt.Errorf("decode digest: %w", err)
	}

	return salt, digest, p, nil
}
