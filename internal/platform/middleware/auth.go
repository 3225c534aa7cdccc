package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "vouch/pkg/domain"
	"vouch/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns the principal it carries.
type TokenValidator interface {
	Validate(tokenString string) (string, error)
}

// RequireAuth extracts the caller principal from the Authorization header.
// The registry never authenticates principals itself; the token issuer plays
// the substrate's role and the subject claim is taken as the opaque caller.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			subject, err := validator.Validate(raw)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			principal, err := id.ParsePrincipal(subject)
			if err != nil {
				writeUnauthorized(w, "Token carries no principal")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithCaller(ctx, principal)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
