package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/projectboard/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":5001")
//	-g string   gRPC health bind address ("" disables)
//	-d string   PostgreSQL DSN
//	-m int      max open DB connections
//	-s string   JWT HMAC secret key
//	-t int      token validity, minutes
//	-l int      auth attempts per window
//	-w int      auth rate window, minutes
//	-r string   Redis address for rate limiting
//
// Unrecognised flags (-c, -env) belong to other layers and are filtered out.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-m", "-s", "-t", "-l", "-w", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run the REST API")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port of the gRPC health service")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.DBMaxOpenConns, "m", config.DBMaxOpenConns, "max open database connections")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")

	fs.IntVar(&config.AuthRateLimit, "l", config.AuthRateLimit, "auth attempts allowed per window")
	authWindow := fs.Int("w", int(config.AuthRateWindow.Minutes()), "auth rate window (in minutes)")

	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address for rate limiting")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// minutes only replace the value when given, so sub-minute settings
	// from earlier layers survive
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
		case "w":
			config.AuthRateWindow = time.Duration(*authWindow) * time.Minute
		}
	})
}
