package auth

import "errors"

var (
	// ErrInvalidToken is returned when a presented token fails verification or was revoked.
	ErrInvalidToken = errors.New("token is not valid")
	// ErrSubjectNotFound is returned by an IdentityLookup for unknown subjects.
	ErrSubjectNotFound = errors.New("subject not found")
)

// FailureCause classifies why a token failed verification.
type FailureCause string

const (
	CauseSignatureInvalid  FailureCause = "signature_invalid"
	CauseMalformed         FailureCause = "malformed"
	CauseExpired           FailureCause = "expired"
	CauseUnsupportedScheme FailureCause = "unsupported_scheme"
	CauseEmptyClaims       FailureCause = "empty_claims"
)

func (c FailureCause) describe() string {
	switch c {
	case CauseSignatureInvalid:
		return "invalid token signature"
	case CauseExpired:
		return "expired token"
	case CauseUnsupportedScheme:
		return "unsupported token"
	case CauseEmptyClaims:
		return "token claims are empty"
	default:
		return "malformed token"
	}
}

// VerifyError carries the cause of a failed verification.
type VerifyError struct {
	Cause FailureCause
	Err   error
}

func (e *VerifyError) Error() string {
	if e.Err != nil {
		return string(e.Cause) + ": " + e.Err.Error()
	}
	return string(e.Cause)
}

func (e *VerifyError) Unwrap() error {
	return e.Err
}
