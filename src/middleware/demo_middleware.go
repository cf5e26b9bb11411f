package middleware

import (
	"net/http"
	"strings"

	"cashlytic-server/src/util"
)

// cronPrefix covers the scheduled jobs, which keep running in demo mode.
const cronPrefix = "/api/cron/"

func DemoModeMiddleware(isDemo bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isDemo {
				next.ServeHTTP(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if strings.HasPrefix(r.URL.Path, cronPrefix) {
				next.ServeHTTP(w, r)
				return
			}
			util.WriteMessage(w, http.StatusForbidden, "Demo mode: only GET requests are allowed")
		})
	}
}
