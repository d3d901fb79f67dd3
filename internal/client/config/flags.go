package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-h", "-t", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.HTTPBaseURL, "h", cfg.HTTPBaseURL, "base URL of the HTTP API")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.BoolVar(&cfg.Debug, "v", cfg.Debug, "debug logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
}
