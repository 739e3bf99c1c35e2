package models

import "time"

// Session maps a raw 16-byte token to a user.
type Session struct {
	Token     []byte
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}
