// Package client is the pointpool gRPC API client used by the CLI.
//
// GRPCClient keeps the session cookie handed out by Signup and Login and
// sends it back on every call in "cookie" metadata, the same way a browser
// would. A call rejected with codes.Aborted (a transaction conflict on the
// server) is retried once. A session the server answers Unauthenticated for
// is dropped.
//
// InitDatabase opens the local state file used to keep the session between
// runs.
//
// gRPC statuses are mapped to errors: Unauthenticated matches
// ErrUnauthorized, Unavailable and DeadlineExceeded match ErrUnavailable,
// and everything else carries the server's public message.
package client
