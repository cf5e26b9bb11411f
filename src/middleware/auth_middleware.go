package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"cashlytic-server/src/apperr"
	"cashlytic-server/src/auth"
	"cashlytic-server/src/logger"
	"cashlytic-server/src/models"
	"cashlytic-server/src/util"

	"github.com/golang-jwt/jwt/v5"
)

// UserProvisioner records the identity carried by a verified token.
type UserProvisioner interface {
	EnsureUser(ctx context.Context, u models.User) (*models.User, error)
}

// ParseTokenFromRequest extracts and validates the bearer token, returning its claims if valid
func ParseTokenFromRequest(r *http.Request, secret []byte) (jwt.MapClaims, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, fmt.Errorf("missing token")
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// JWTAuthMiddleware verifies the bearer token, upserts the user it names and
// places that user on the request context.
func JWTAuthMiddleware(secret string, users UserProvisioner) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := ParseTokenFromRequest(r, key)
			if err != nil {
				util.WriteError(w, r, fmt.Errorf("%w: %v", apperr.ErrUnauthorized, err))
				return
			}
			subject, err := claims.GetSubject()
			if err != nil || subject == "" {
				util.WriteError(w, r, fmt.Errorf("%w: token has no subject", apperr.ErrUnauthorized))
				return
			}

			user, err := users.EnsureUser(r.Context(), models.User{
				ClerkUserID: subject,
				Email:       stringClaim(claims, "email"),
				Name:        stringClaim(claims, "name"),
				ImageURL:    stringClaim(claims, "picture"),
			})
			if err != nil {
				util.WriteError(w, r, fmt.Errorf("ensure user: %w", err))
				return
			}

			ctx := auth.WithUser(r.Context(), user)
			log := logger.FromContext(ctx).With().Str("user_id", user.ID).Logger()
			ctx = logger.WithContext(ctx, log)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func stringClaim(claims jwt.MapClaims, name string) string {
	s, _ := claims[name].(string)
	return s
}
