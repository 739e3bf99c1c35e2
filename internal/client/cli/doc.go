// Package cli provides the interactive pointpool command-line client.
//
// It wires configuration and the gRPC API client into a REPL: sign up or
// log in, collect points from the shared pool, assign them to champions and
// browse teams and champions. The REPL is started via App.Run(ctx), which
// blocks until the user exits.
//
// The session is kept in a local sqlite file (config StateFile), so a
// restarted CLI stays logged in until the server expires the session.
package cli
