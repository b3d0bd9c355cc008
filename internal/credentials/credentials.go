// Package credentials wraps the salted one-way hashing used at login. Every
// principal kind verifies through the same routine; comparisons take one
// bcrypt round trip whether or not the identifier exists, so login timing
// does not distinguish "unknown identifier" from "wrong secret".
package credentials

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const DefaultCost = 10

// dummyHash is a valid bcrypt hash of no account's secret. Compared against
// when the identifier is unknown to keep both failure paths equally priced.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func Hash(secret string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

func Verify(secret, storedHash string) bool {
	if storedHash == "" {
		CompareDummy(secret)
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(secret)) == nil
}

// CompareDummy burns one bcrypt comparison. Called on lookup misses so the
// response time matches the wrong-secret path.
func CompareDummy(secret string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(secret))
}
