package security

import "golang.org/x/crypto/bcrypt"

// Hasher wraps bcrypt with a configurable cost so environments can tune
// the work factor without code changes.
type Hasher struct {
	cost int
}

// NewHasher builds a Hasher. Cost 0 falls back to bcrypt.DefaultCost,
// which lands in the tens-of-milliseconds range on current hardware.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &Hasher{cost: cost}
}

// Hash hashes a plain text password with bcrypt.
func (h *Hasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Compare checks a bcrypt hash against a plaintext password.
// bcrypt performs the comparison in constant time internally.
func (h *Hasher) Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
