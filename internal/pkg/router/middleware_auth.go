package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/diarium/internal/pkg/jwt"
)

// bearerToken extracts the token from an Authorization header, or ""
// when the header is absent or not a bearer scheme.
func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// middlewareAuthentication requires a valid bearer token on every route
// not listed in publicEndpoints (keyed method then route pattern).
// Verified claims are placed on the request context.
func middlewareAuthentication(verifier jwt.JWT, publicEndpoints map[string]map[string]struct{}) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if routes, ok := publicEndpoints[r.Method]; ok {
				if _, public := routes[matchedRoutePath(r)]; public {
					next.ServeHTTP(w, r)
					return
				}
			}

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				writeJSON(w, map[string]string{"message": "Authentication required"}, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				writeJSON(w, map[string]string{"message": "Invalid or expired token"}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), claims)))
		})
	}
}
