package hash

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher is the credential-hashing capability consumed by the
// identity use case.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// Bcrypt implements PasswordHasher with a configurable work factor.
type Bcrypt struct {
	cost int
}

// NewBcrypt builds a bcrypt hasher. Costs below bcrypt.DefaultCost are
// raised to it so the work factor never drops under 10.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.DefaultCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(plain string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (b *Bcrypt) Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// NewResetToken generates a high-entropy random token, returning the raw
// token (delivered out-of-band) and the SHA-256 digest to persist.
func NewResetToken() (raw, digest string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	return raw, DigestToken(raw), nil
}

// DigestToken computes the stored one-way hash of a presented reset token.
func DigestToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// TokensEqual compares token digests in constant time.
func TokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
