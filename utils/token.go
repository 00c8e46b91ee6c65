package utils

import (
	"errors"
	"sync"
	"time"
)

var ErrTokenBlacklisted = errors.New("token has been revoked")

var (
	blacklistedTokens = make(map[string]time.Time)
	blacklistMutex    sync.RWMutex
)

// BlacklistToken keeps a logged-out token rejected for 24 hours, which
// outlives the token's own expiry.
func BlacklistToken(token string) {
	blacklistMutex.Lock()
	defer blacklistMutex.Unlock()
	blacklistedTokens[token] = time.Now().Add(24 * time.Hour)
}

func IsTokenBlacklisted(token string) bool {
	blacklistMutex.RLock()
	expiry, exists := blacklistedTokens[token]
	blacklistMutex.RUnlock()

	if !exists {
		return false
	}
	if time.Now().Before(expiry) {
		return true
	}

	// Expired entry: upgrade to the write lock and re-check, since
	// another caller may have pruned it in the meantime.
	blacklistMutex.Lock()
	if expiry, exists := blacklistedTokens[token]; exists && !time.Now().Before(expiry) {
		delete(blacklistedTokens, token)
	}
	blacklistMutex.Unlock()
	return false
}

// ValidateToken is the query-parameter variant used by the websocket
// upgrade, where an Authorization header is not available.
func ValidateToken(tokenString string) (*CustomClaims, error) {
	if IsTokenBlacklisted(tokenString) {
		return nil, ErrTokenBlacklisted
	}
	return ParseToken(tokenString)
}
