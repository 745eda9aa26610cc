package redis

import (
	"fmt"

	"github.com/mcoot/roomlobby/internal/storage"
)

const keyPrefix = "roomlobby"

// valueKey returns the Redis key for one session value
func valueKey(sessionID string, key storage.Key) string {
	return fmt.Sprintf("%s:session:%s:%s", keyPrefix, sessionID, key)
}

// indexKey returns the SET of value keys written for a session
func indexKey(sessionID string) string {
	return fmt.Sprintf("%s:idx:session:%s", keyPrefix, sessionID)
}
