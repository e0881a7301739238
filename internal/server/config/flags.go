package config

import (
	"flag"
	"os"
	"time"

	"github.com/mpetrenko/hrauth/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   token signing secret
//	-t int      access token validity, minutes
//	-l int      clock-skew leeway, seconds
//	-p int      minimum password length
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with flags owned elsewhere. Duration
// flags are accepted as integers and converted to time.Duration values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-l", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidity.Minutes()), "access token validity (in minutes)")
	clockSkewLeeway := fs.Int("l", int(config.ClockSkewLeeway.Seconds()), "clock-skew leeway (in seconds)")

	fs.IntVar(&config.PasswordMinLength, "p", config.PasswordMinLength, "minimum password length")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Durations are recomputed only for flags the user actually passed.
	// Unconditionally re-deriving from the integer default would round a
	// finer-grained overlay value (say, a "90s" validity from JSON or env)
	// through whole minutes.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidity = time.Duration(*accessTokenValidity) * time.Minute
		case "l":
			config.ClockSkewLeeway = time.Duration(*clockSkewLeeway) * time.Second
		}
	})
}
