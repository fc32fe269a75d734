package auth

import (
	"context"
	"time"
)

// RevocationStore holds revoked token keys. Implementations must be safe for
// concurrent use; a completed Revoke is visible to every later IsRevoked.
type RevocationStore interface {
	Revoke(ctx context.Context, key string, ttl time.Duration) error
	IsRevoked(ctx context.Context, key string) (bool, error)
}

// Recorder receives verification and authentication outcomes.
type Recorder interface {
	Verification(result string)
	Authentication(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) Verification(string)   {}
func (nopRecorder) Authentication(string) {}
