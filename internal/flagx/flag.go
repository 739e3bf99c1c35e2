// Package flagx holds the small helpers config loaders share: picking
// their own flags out of os.Args, locating the JSON config file, and
// reading overrides from the environment.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the flags named in allowedFlags, together with
// their values. Both "-f value" and "-f=value" are recognised. A token that
// starts with "-" is never consumed as a value.
//
// Each config layer parses its own flags, so filtering lets several
// FlagSets coexist on one command line without "flag provided but not
// defined" failures.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigPath returns the value of -c / -config in args, or "" if neither
// is present.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return path
}

// JsonConfigFlags is ConfigPath applied to the process arguments.
func JsonConfigFlags() string {
	return ConfigPath(os.Args[1:])
}
