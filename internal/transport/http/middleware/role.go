package middleware

import (
	"net/http"
	"strings"
)

// RequireScope returns middleware that allows access only to tokens whose
// space-separated scope claim contains one of the provided scopes
// (e.g. jwtinfra.ScopePublish). It must run after Auth.
func RequireScope(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			for _, granted := range strings.Fields(claims.Scope) {
				for _, want := range allowed {
					if granted == want {
						next.ServeHTTP(w, r)
						return
					}
				}
			}
			writeJSONError(w, http.StatusForbidden, "forbidden")
		})
	}
}
