package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   address and port of the backend server (default from Config)
//	-t int      request timeout in seconds (default from Config)
//	-f string   local state file
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.StateFile, "f", cfg.StateFile, "local state file")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
