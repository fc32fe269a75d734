package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/bearer-auth/internal/domain"
)

const (
	// BearerPrefix precedes the token in the Authorization header.
	BearerPrefix = "Bearer "
	// TokenTTL is the fixed lifetime of an issued token.
	TokenTTL = 60 * time.Minute

	roleClaim    = "auth"
	minKeyLength = 32
)

// Claims describes JWT payload.
type Claims struct {
	Role domain.Role `json:"auth"`
	jwt.RegisteredClaims
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// TokenService issues, verifies and revokes HS256 bearer tokens.
type TokenService struct {
	key     []byte
	store   RevocationStore
	logger  *zap.Logger
	now     func() time.Time
	metrics Recorder
}

// NewTokenService decodes the base64 secret and builds a service. Callers are
// expected to treat an error as fatal.
func NewTokenService(secretBase64 string, store RevocationStore, logger *zap.Logger, opts ...TokenOption) (*TokenService, error) {
	if secretBase64 == "" {
		return nil, errors.New("token secret is not configured")
	}
	key, err := base64.StdEncoding.DecodeString(secretBase64)
	if err != nil {
		return nil, fmt.Errorf("decode token secret: %w", err)
	}
	if len(key) < minKeyLength {
		return nil, fmt.Errorf("token secret must decode to at least %d bytes, got %d", minKeyLength, len(key))
	}
	if store == nil {
		return nil, errors.New("revocation store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &TokenService{key: key, store: store, logger: logger, now: time.Now, metrics: nopRecorder{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SetRecorder attaches a metrics recorder for verification outcomes.
func (s *TokenService) SetRecorder(r Recorder) {
	if r != nil {
		s.metrics = r
	}
}

// Issue builds and signs a token for subject, returned with the bearer prefix.
func (s *TokenService) Issue(subject string, role domain.Role) (string, error) {
	if subject == "" {
		return "", errors.New("subject is required")
	}
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", role)
	}

	now := s.now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return BearerPrefix + signed, nil
}

// Parse verifies signature, encoding and expiry and returns the claims. Any
// failure is a *VerifyError. The revocation store is not consulted.
func (s *TokenService) Parse(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, &VerifyError{Cause: CauseEmptyClaims, Err: errors.New("token is empty")}
	}

	parser := jwt.NewParser(
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
	)

	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return s.key, nil
	})
	if err != nil {
		return nil, &VerifyError{Cause: classify(err), Err: err}
	}
	if !parsed.Valid {
		return nil, &VerifyError{Cause: CauseSignatureInvalid, Err: errors.New("token not valid")}
	}
	if claims.Subject == "" {
		return nil, &VerifyError{Cause: CauseEmptyClaims, Err: errors.New("subject missing")}
	}
	if !claims.Role.Valid() {
		return nil, &VerifyError{Cause: CauseEmptyClaims, Err: fmt.Errorf("%s claim %q invalid", roleClaim, claims.Role)}
	}
	return claims, nil
}

// Verify reports whether tokenStr is correctly signed, well formed and not
// expired. Failures are logged with their cause.
func (s *TokenService) Verify(tokenStr string) bool {
	_, err := s.Parse(tokenStr)
	if err == nil {
		s.metrics.Verification("valid")
		return true
	}

	cause := CauseMalformed
	var verr *VerifyError
	if errors.As(err, &verr) {
		cause = verr.Cause
	}
	s.metrics.Verification(string(cause))
	s.logger.Warn(cause.describe(), zap.String("cause", string(cause)), zap.Error(err))
	return false
}

// ExtractClaims re-parses a token that already passed Verify.
func (s *TokenService) ExtractClaims(tokenStr string) (*Claims, error) {
	return s.Parse(tokenStr)
}

// Revoke adds tokenStr to the revocation store until the token would have
// expired on its own. Revoking twice is harmless.
func (s *TokenService) Revoke(ctx context.Context, tokenStr string) error {
	if err := s.store.Revoke(ctx, revocationKey(tokenStr), s.retention(tokenStr)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenStr was revoked. A store failure counts as
// revoked.
func (s *TokenService) IsRevoked(ctx context.Context, tokenStr string) bool {
	revoked, err := s.store.IsRevoked(ctx, revocationKey(tokenStr))
	if err != nil {
		s.logger.Error("revocation lookup failed", zap.Error(err))
		return true
	}
	return revoked
}

// retention is how long a revocation entry must live. Entries for tokens
// without a readable expiry are kept for a full TTL.
func (s *TokenService) retention(tokenStr string) time.Duration {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil || claims.ExpiresAt == nil {
		return TokenTTL
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return ttl
}

func revocationKey(tokenStr string) string {
	sum := sha256.Sum256([]byte(tokenStr))
	return hex.EncodeToString(sum[:])
}

func classify(err error) FailureCause {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return CauseExpired
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return CauseUnsupportedScheme
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return CauseSignatureInvalid
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return CauseEmptyClaims
	default:
		return CauseMalformed
	}
}
