package models

import "time"

// Pool is the shared points pool. Points collected while now >= OpenAt.
type Pool struct {
	Points int64
	OpenAt time.Time
}

// IsOpen reports whether a collect at now could be served.
func (p Pool) IsOpen(now time.Time) bool {
	return p.Points > 0 && !now.Before(p.OpenAt)
}
