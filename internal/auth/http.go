package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

type failureBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Wrap adapts the authenticator to net/http so it composes with routers
// other than Fiber.
func (a *Authenticator) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := a.Authenticate(r.Context(), r.Header.Get("Authorization"))
		switch {
		case errors.Is(err, ErrInvalidToken):
			writeFailure(w, http.StatusBadRequest, ErrInvalidToken.Error())
			return
		case errors.Is(err, ErrSubjectNotFound):
			writeFailure(w, http.StatusUnauthorized, "user not found")
			return
		case err != nil:
			a.logger.Error("authentication failed", zap.Error(err))
			writeFailure(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if principal != nil {
			r = r.WithContext(WithPrincipal(r.Context(), principal))
		}
		next.ServeHTTP(w, r)
	})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(failureBody{Message: message, Status: status})
}
