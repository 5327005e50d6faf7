package middleware

import (
	"net/http"
	"strings"
)

// CORS adds Access-Control headers for allowed origins and short-circuits OPTIONS requests.
// An entry of "*" allows every origin; an entry such as "https://*.vercel.app" allows any
// single subdomain label in place of the star.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	allowAll := false
	var exact []string
	var wildcard [][2]string
	for _, origin := range allowedOrigins {
		origin = strings.ToLower(strings.TrimSpace(origin))
		switch {
		case origin == "*":
			allowAll = true
		case strings.Contains(origin, "*"):
			prefix, suffix, _ := strings.Cut(origin, "*")
			wildcard = append(wildcard, [2]string{prefix, suffix})
		case origin != "":
			exact = append(exact, origin)
		}
	}

	allowed := func(origin string) bool {
		if allowAll {
			return true
		}
		origin = strings.ToLower(origin)
		for _, candidate := range exact {
			if candidate == origin {
				return true
			}
		}
		for _, pattern := range wildcard {
			if strings.HasPrefix(origin, pattern[0]) && strings.HasSuffix(origin, pattern[1]) {
				label := origin[len(pattern[0]) : len(origin)-len(pattern[1])]
				if label != "" && !strings.ContainsAny(label, "./:") {
					return true
				}
			}
		}
		return false
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && allowed(origin) {
			if allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
