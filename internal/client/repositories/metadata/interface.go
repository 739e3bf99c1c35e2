package metadata

import (
	"context"
)

// Keys the CLI keeps between runs.
const (
	KeySessionToken = "session_token"
	KeyUserName     = "user_name"
)

// Repository is a small key/value store for local client state. Get returns
// (nil, nil) when the key is absent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
