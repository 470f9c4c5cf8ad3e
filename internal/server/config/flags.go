package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/bpay/bpay/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-s", "-t", "-m", "-k", "-o", "-l"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g. ":3000")
//	-d string   database DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-m string   hash algorithm (bcrypt, argon2id)
//	-k int      bcrypt cost
//	-o string   CORS allowed origins
//	-l string   log level
//
// Arguments that are not in this list are filtered out first, so -c and
// friends do not trip the parser.
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	ttl := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.StringVar(&config.HashAlgorithm, "m", config.HashAlgorithm, "PIN hash algorithm")
	fs.IntVar(&config.HashCost, "k", config.HashCost, "bcrypt cost")
	fs.StringVar(&config.CORSAllowedOrigins, "o", config.CORSAllowedOrigins, "CORS allowed origins")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	tokenTTLSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			tokenTTLSet = true
		}
	})
	if tokenTTLSet {
		config.AccessTokenValidityDuration = time.Duration(*ttl) * time.Minute
	}
	return nil
}
