package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ProfileIDHeader carries the acting profile on preference endpoints.
const ProfileIDHeader = "X-Profile-ID"

// ProfileID extracts the acting profile from the request. Header first,
// ?profileId= as a fallback for clients that cannot set headers.
func ProfileID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(ProfileIDHeader)); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("profileId"))
}

// MaintenanceSecretMiddleware guards maintenance endpoints with a shared
// secret, accepted as a bearer token or ?secret= query param. An empty
// configured secret disables the endpoints entirely rather than leaving
// them open.
func MaintenanceSecretMiddleware(secret func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			want := secret()
			if want == "" || extractSecret(r) != want {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractSecret pulls the maintenance secret from the request.
// Priority: Authorization bearer header > ?secret= query param.
func extractSecret(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if s := strings.TrimSpace(parts[1]); s != "" {
				return s
			}
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("secret"))
}
