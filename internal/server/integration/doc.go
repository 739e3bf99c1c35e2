// Package integration runs the points and session services against a real
// PostgreSQL database. The tests are skipped unless TEST_POSTGRES_DSN points
// at a database they may freely truncate.
package integration
