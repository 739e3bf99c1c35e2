package models

import "time"

// User is an account together with its ledger row. PasswordHash never
// leaves the server.
type User struct {
	ID               int64
	Name             string
	PasswordHash     string
	Points           int64
	CanGetPointsTime time.Time
	CreatedAt        time.Time
}

// Balance is the ledger view of a user: points and the earliest instant of
// the next collect.
type Balance struct {
	Points           int64
	CanGetPointsTime time.Time
}
