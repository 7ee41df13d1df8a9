package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/librarian/internal/flagx"
)

// ValueFlags lists every flag of the generator that consumes the following
// argument. The remaining arguments are scenario files.
var ValueFlags = []string{"-a", "-l", "-t", "-c", "-config"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the library listener (default from Config)
//	-l string   activity log path (default from Config)
//	-t int      dial timeout in seconds (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, so scenario file names are left alone.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-l", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port of the library server")
	fs.StringVar(&cfg.ActivityLogPath, "l", cfg.ActivityLogPath, "activity log path")
	dialTimeout := fs.Int("t", int(cfg.DialTimeout.Seconds()), "dial timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.DialTimeout = time.Duration(*dialTimeout) * time.Second
}
