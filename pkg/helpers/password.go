package helpers

import "golang.org/x/crypto/bcrypt"

// PasswordHasher hashes and checks passwords with bcrypt at a fixed cost.
// A fresh salt is generated on every Hash call.
type PasswordHasher struct {
	Cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{Cost: cost}
}

func (h *PasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify never errors: a malformed hash is simply a mismatch.
func (h *PasswordHasher) Verify(plain, hash string) bool {
	return CompareHashAndPassword(hash, plain)
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
