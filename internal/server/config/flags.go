package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-h string   HTTP bind address (e.g. ":8000")
//	-a string   gRPC bind address (e.g. ":50051")
//	-d string   PostgreSQL DSN
//	-r string   Redis address for the session cache
//	-s int      session lifetime, seconds
//	-l string   log level (debug, info, warn, error)
//
// os.Args is filtered down to these flags first, so -c/-config and flags
// owned by other components do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-h", "-a", "-d", "-r", "-s", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "h", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address (empty disables session cache)")
	sessionTTL := fs.Int64("s", int64(config.SessionTTL/time.Second), "session lifetime (in seconds)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTTL = time.Duration(*sessionTTL) * time.Second
}
