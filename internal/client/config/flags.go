package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/urgekeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the record store ("" runs local-only)
//	-t string   access token
//	-d string   path of the local SQLite database
//	-p int      history poll interval in seconds
//	-l int      events fetched per poll
//	-i int      online check interval in seconds
//	-A string   comma separated admin identities
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-p", "-l", "-i", "-A"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "access token")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	pollInterval := fs.Int("p", int(cfg.PollInterval.Seconds()), "history poll interval (in seconds)")
	fs.IntVar(&cfg.FetchLimit, "l", cfg.FetchLimit, "events fetched per poll")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	admins := fs.String("A", "", "comma separated admin identities")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PollInterval = time.Duration(*pollInterval) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	if *admins != "" {
		cfg.AdminIdentities = flagx.SplitList(*admins)
	}
}
