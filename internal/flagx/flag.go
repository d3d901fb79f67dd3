// Package flagx lets several config loaders share os.Args without tripping
// over each other's flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// ConfigEnvName is consulted when no -c/-config flag is given.
const ConfigEnvName = "CONFIG"

// FilterArgs keeps only the flags listed in allowedFlags, together with their
// values. Both "-f value" and "-f=value" spellings are recognised; a token
// starting with "-" is never consumed as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, inline := strings.Cut(arg, "="); inline && strings.HasPrefix(arg, "-") {
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
			i++
			filtered = append(filtered, args[i])
		}
	}

	return filtered
}

// ConfigFile returns the JSON config path given by -c / -config, falling
// back to the CONFIG environment variable. Empty means no file.
func ConfigFile() string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(os.Args[1:], []string{"-c", "-config"}))

	if path == "" {
		path = os.Getenv(ConfigEnvName)
	}
	return path
}
