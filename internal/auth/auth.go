package auth

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// KeyPrefix marks keys issued by GenerateAPIKey
const KeyPrefix = "ba_"

// HashKey hashes an API key using bcrypt
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckKey compares an API key with a hash
func CheckKey(key, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
	return err == nil
}

// GenerateAPIKey generates a random API key
func GenerateAPIKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return KeyPrefix + hex.EncodeToString(bytes), nil
}

// KeyFromRequest reads the key from X-API-Key or an Authorization bearer token
func KeyFromRequest(r *http.Request) string {
	apiKey := r.Header.Get("X-API-Key")
	if apiKey == "" {
		auth := r.Header.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			apiKey = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	return apiKey
}

// Guard checks requests against a single bcrypt key hash
type Guard struct {
	hash string
}

// NewGuard creates a guard. An empty hash disables the check.
func NewGuard(hash string) *Guard {
	return &Guard{hash: hash}
}

// Enabled reports whether a key is required
func (g *Guard) Enabled() bool {
	return g.hash != ""
}

// RequireAPIKey middleware requires a valid API key when the guard is enabled
func (g *Guard) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := KeyFromRequest(r)
		if apiKey == "" {
			unauthorized(w, "API key required")
			return
		}

		if !CheckKey(apiKey, g.hash) {
			unauthorized(w, "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
