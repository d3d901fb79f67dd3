package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-l string   HTTP bind address (e.g., ":4000")
//	-a string   gRPC bind address (e.g., ":50051")
//	-k string   storage backend: postgres, mongo or memory
//	-d string   PostgreSQL DSN
//	-m string   MongoDB URI
//	-n string   MongoDB database name
//	-s string   JWT HMAC secret key
//	-t int      session token validity, minutes (0 disables expiry)
//	-z int      initial cart size
//	-x          collapse wrong-email and wrong-password login messages
//	-r string   Redis address for the rate limiter
//	-q int      signup/login attempts per client per window
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-w string   public base URL for image links
//	-v          debug logging
//
// os.Args is filtered with flagx.FilterArgs first so that the -c/-config
// flag consumed by parseJson does not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-l", "-a", "-k", "-d", "-m", "-n", "-s", "-t", "-z", "-x", "-r", "-q",
		"-u", "-p", "-b", "-g", "-e", "-w", "-v",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "l", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.StorageBackend, "k", config.StorageBackend, "storage backend (postgres|mongo|memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "MongoDB URI")
	fs.StringVar(&config.MongoDatabase, "n", config.MongoDatabase, "MongoDB database")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token_validity_duration (in minutes)")

	fs.IntVar(&config.CartSize, "z", config.CartSize, "initial cart size")
	fs.BoolVar(&config.CollapseLoginErrors, "x", config.CollapseLoginErrors, "collapse login error messages")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "Redis address")
	fs.IntVar(&config.AuthRateLimit, "q", config.AuthRateLimit, "auth attempts per window")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.PublicBaseURL, "w", config.PublicBaseURL, "public base URL")
	fs.BoolVar(&config.Debug, "v", config.Debug, "debug logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only an explicit -t overrides, so sub-minute values from JSON survive.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
		}
	})
}
