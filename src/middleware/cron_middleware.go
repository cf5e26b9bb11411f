package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"cashlytic-server/src/apperr"
	"cashlytic-server/src/util"
)

// CronSecretMiddleware guards the scheduled-job endpoints with a shared
// bearer secret. An empty secret disables the endpoints entirely.
func CronSecretMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				util.WriteError(w, r, fmt.Errorf("%w: bad cron secret", apperr.ErrUnauthorized))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
