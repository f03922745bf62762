package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// StatsKey builds the cache key for a commit's diff statistics.
// The commit hash fully determines the stats, so no other inputs are mixed in.
func StatsKey(commitHash string) string {
	return fmt.Sprintf("stats:%s", commitHash)
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
