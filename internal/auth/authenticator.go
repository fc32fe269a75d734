package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/bearer-auth/internal/domain"
	"github.com/spec-kit/bearer-auth/internal/events"
)

// IdentityLookup resolves a token subject to a user record. It must return
// ErrSubjectNotFound for unknown subjects.
type IdentityLookup interface {
	ByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Principal represents the authenticated caller.
type Principal struct {
	User        *domain.User
	Authorities []string
}

// Subject returns the username the principal authenticated as.
func (p *Principal) Subject() string {
	if p == nil || p.User == nil {
		return ""
	}
	return p.User.Username
}

// Authenticator decides, independently of any HTTP framework, whether a
// request's Authorization header authenticates it.
type Authenticator struct {
	tokens     *TokenService
	identities IdentityLookup
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuthenticator constructs an Authenticator. dispatcher may be nil.
func NewAuthenticator(tokens *TokenService, identities IdentityLookup, dispatcher events.Dispatcher, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{tokens: tokens, identities: identities, dispatcher: dispatcher, logger: logger}
}

// ResolveToken returns the token following the bearer prefix. Any other
// header value means no token was presented.
func ResolveToken(header string) (string, bool) {
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := header[len(BearerPrefix):]
	if token == "" {
		return "", false
	}
	return token, true
}

// Authenticate returns (nil, nil) when no token is presented, ErrInvalidToken
// when the token fails verification or is revoked, and the lookup error when
// the subject cannot be resolved.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*Principal, error) {
	token, ok := ResolveToken(header)
	if !ok {
		a.tokens.metrics.Authentication("anonymous")
		return nil, nil
	}

	if !a.tokens.Verify(token) || a.tokens.IsRevoked(ctx, token) {
		a.tokens.metrics.Authentication("rejected")
		a.publishRejected(ctx, "", "token is not valid")
		return nil, ErrInvalidToken
	}

	claims, err := a.tokens.ExtractClaims(token)
	if err != nil {
		a.tokens.metrics.Authentication("rejected")
		return nil, ErrInvalidToken
	}

	user, err := a.identities.ByUsername(ctx, claims.Subject)
	if err != nil {
		a.tokens.metrics.Authentication("lookup_failed")
		if errors.Is(err, ErrSubjectNotFound) {
			a.publishRejected(ctx, claims.Subject, "subject not found")
			return nil, err
		}
		return nil, fmt.Errorf("lookup %q: %w", claims.Subject, err)
	}

	a.tokens.metrics.Authentication("authenticated")
	return &Principal{User: user, Authorities: user.Role.Authorities()}, nil
}

func (a *Authenticator) publishRejected(ctx context.Context, subject, reason string) {
	if a.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventAuthenticationRejected,
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Payload:   events.AuthenticationRejectedPayload{Reason: reason},
	}
	if err := a.dispatcher.Publish(ctx, event); err != nil {
		a.logger.Warn("publish event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
