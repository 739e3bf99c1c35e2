package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// sessionCommands need a logged in user.
var sessionCommands = map[string]bool{
	"logout":  true,
	"collect": true,
	"assign":  true,
	"b":       true,
	"balance": true,
}

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Collect(ctx context.Context) error
	Assign(ctx context.Context, arg string) error
	Balance(ctx context.Context) error
	Pool(ctx context.Context) error
	Champions(ctx context.Context) error
	Teams(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the pointpool CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The same reader serves the prompts commands
// show, so no input is buffered away from them. The loop exits on EOF or
// when the user types "exit" or "quit".
//
// Commands available to everyone: help, signup, login, champions (c),
// teams, pool, exit | quit. Logged in users also get collect, assign [id],
// balance (b) and logout.
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("pp> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		if sessionCommands[cmd] && !a.isLoggedIn() {
			printlnFn("Please signup or login first")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: collect, assign [id], (b)alance, pool, (c)hampions, teams, logout, exit")
			} else {
				printlnFn("Available commands: signup, login, pool, (c)hampions, teams, exit")
			}

		case "signup":
			_ = a.Signup(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "collect":
			_ = a.Collect(ctx)

		case "assign":
			var arg string
			if len(parts) > 1 {
				arg = parts[1]
			}
			_ = a.Assign(ctx, arg)

		case "b", "balance":
			_ = a.Balance(ctx)

		case "pool":
			_ = a.Pool(ctx)

		case "c", "champions":
			_ = a.Champions(ctx)

		case "teams":
			_ = a.Teams(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
