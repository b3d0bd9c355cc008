package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/Rounit002/demohavenn/internal/domain/library"
)

var errEmptyToken = errors.New("session token is required")

// Store holds at most one principal per client-presented token. Get on a
// token with no live session returns the anonymous principal and no error;
// errors are reserved for backend failures.
type Store interface {
	Get(ctx context.Context, token string) (library.Principal, error)
	Set(ctx context.Context, token string, principal library.Principal) error
	Destroy(ctx context.Context, token string) error
}

// NewToken mints a session token. 32 random bytes, hex encoded.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
