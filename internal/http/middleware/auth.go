package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"wazmeow/internal/http/dto"
	"wazmeow/pkg/logger"
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	APIKeys    []string
	SkipPaths  []string
	HeaderName string
}

// DefaultAuthConfig returns a default auth configuration
func DefaultAuthConfig() *AuthConfig {
	return &AuthConfig{
		APIKeys:    []string{}, // Empty means no auth required
		SkipPaths:  []string{"/health", "/metrics", "/swagger"},
		HeaderName: "X-API-Key",
	}
}

// AuthMiddleware implements API key authentication. The key is read from
// the configured header, falling back to a Bearer token in Authorization.
func AuthMiddleware(config *AuthConfig, log logger.Logger) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultAuthConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldSkipAuth(r.URL.Path, config.SkipPaths) || len(config.APIKeys) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := r.Header.Get(config.HeaderName)
			if apiKey == "" {
				if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
					apiKey = strings.TrimPrefix(authHeader, "Bearer ")
				}
			}

			if apiKey == "" {
				log.WarnWithFields("Missing API key", logger.Fields{
					"method":      r.Method,
					"path":        r.URL.Path,
					"remote_addr": r.RemoteAddr,
				})
				writeUnauthorized(w, "API key required", "Missing or invalid API key")
				return
			}

			if !isValidAPIKey(apiKey, config.APIKeys) {
				log.WarnWithFields("Invalid API key", logger.Fields{
					"method":      r.Method,
					"path":        r.URL.Path,
					"remote_addr": r.RemoteAddr,
					"api_key":     maskAPIKey(apiKey),
				})
				writeUnauthorized(w, "Invalid API key", "The provided API key is not valid")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// BasicAuthMiddleware implements HTTP Basic Authentication
func BasicAuthMiddleware(username, password string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip for health checks
			if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			// If no credentials configured, skip auth
			if username == "" || password == "" {
				next.ServeHTTP(w, r)
				return
			}

			reqUsername, reqPassword, ok := r.BasicAuth()
			if !ok {
				log.WarnWithFields("Missing basic auth credentials", logger.Fields{
					"method":      r.Method,
					"path":        r.URL.Path,
					"remote_addr": r.RemoteAddr,
				})
				w.Header().Set("WWW-Authenticate", `Basic realm="WazMeow API"`)
				writeUnauthorized(w, "Authentication required", "Basic authentication credentials required")
				return
			}

			userMatch := subtle.ConstantTimeCompare([]byte(reqUsername), []byte(username)) == 1
			passMatch := subtle.ConstantTimeCompare([]byte(reqPassword), []byte(password)) == 1
			if !userMatch || !passMatch {
				log.WarnWithFields("Invalid basic auth credentials", logger.Fields{
					"method":      r.Method,
					"path":        r.URL.Path,
					"remote_addr": r.RemoteAddr,
					"username":    reqUsername,
				})
				w.Header().Set("WWW-Authenticate", `Basic realm="WazMeow API"`)
				writeUnauthorized(w, "Invalid credentials", "The provided credentials are not valid")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(dto.NewErrorResponse(message, "UNAUTHORIZED", details))
}

// shouldSkipAuth checks if authentication should be skipped for a path
func shouldSkipAuth(path string, skipPaths []string) bool {
	for _, skipPath := range skipPaths {
		if path == skipPath || strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

// isValidAPIKey checks the provided key against the configured set in
// constant time.
func isValidAPIKey(apiKey string, validKeys []string) bool {
	valid := false
	for _, validKey := range validKeys {
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(validKey)) == 1 {
			valid = true
		}
	}
	return valid
}

// maskAPIKey masks an API key for logging
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:4] + "****" + apiKey[len(apiKey)-4:]
}
