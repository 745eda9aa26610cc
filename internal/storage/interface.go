package storage

import (
	"context"
)

// Key names a value in the session store
type Key string

const (
	// KeyPlayerToken holds the resumable identity issued by the lobby server
	KeyPlayerToken Key = "playerToken"
	// KeyAccessToken holds the authenticated-user credential supplied externally
	KeyAccessToken Key = "accessToken"
)

// SessionStore is the session-scoped key/value port. Get returns
// model.ErrKeyNotFound for absent keys.
type SessionStore interface {
	Get(ctx context.Context, key Key) (string, error)
	Set(ctx context.Context, key Key, value string) error
	Delete(ctx context.Context, key Key) error
	Clear(ctx context.Context) error
}
