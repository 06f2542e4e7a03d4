package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/VladisB/cosmarket/pkg/utils"
)

type ContextKey string

const UserIDKey ContextKey = "userID"

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userIDFromHeader(r)
		if !ok {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches the caller identity when a valid token is present
// and lets anonymous requests through. Checkout and payment accept orders
// without a customer.
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := userIDFromHeader(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), UserIDKey, userID))
		}
		next.ServeHTTP(w, r)
	})
}

// UserID extracts the authenticated caller from the context, nil for
// anonymous requests.
func UserID(ctx context.Context) *int {
	if id, ok := ctx.Value(UserIDKey).(int); ok {
		return &id
	}
	return nil
}

func userIDFromHeader(r *http.Request) (int, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return 0, false
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	jwtService := &JWTService{}
	claims, err := jwtService.ValidateToken(token)
	if err != nil {
		return 0, false
	}
	return claims.UserID, true
}
