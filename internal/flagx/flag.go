// Package flagx lets several independent flag sets share os.Args: each one
// keeps only the flags it knows and parses those.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// flagName returns the flag part of a "-name=value" / "--name=value" token,
// or the whole token when it carries no inline value.
func flagName(arg string) (name string, inline bool) {
	if i := strings.IndexByte(arg, '='); i > 0 {
		return arg[:i], true
	}
	return arg, false
}

// FilterArgs returns the subset of args made of the allowed flags and their
// values. A value is either inline (-c=conf.json) or the following token when
// that token does not start with '-'. Order is preserved and the result is
// never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if !strings.HasPrefix(args[i], "-") {
			continue
		}
		name, inline := flagName(args[i])
		if _, ok := allowed[name]; !ok {
			continue
		}
		filtered = append(filtered, args[i])
		if inline {
			continue
		}
		if next := i + 1; next < len(args) && !strings.HasPrefix(args[next], "-") {
			filtered = append(filtered, args[next])
			i = next
		}
	}
	return filtered
}

// ConfigFileFlag extracts the configuration file path given with -c or
// -config. The last occurrence wins; an empty string means none was given.
func ConfigFileFlag(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))

	return path
}
