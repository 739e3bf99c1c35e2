package flagx

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvString overwrites *dst with the variable's value when it is set and
// non-empty.
func EnvString(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

// EnvDuration overwrites *dst with a duration read from the variable. Both
// Go duration strings ("90s") and plain integers (seconds) are accepted.
// A malformed value leaves *dst untouched and is reported.
func EnvDuration(dst *time.Duration, name string) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		*dst = time.Duration(secs) * time.Second
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}
