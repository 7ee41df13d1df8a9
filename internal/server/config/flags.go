package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/librarian/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   listener address (e.g., ":8080")
//	-g string   gRPC health address, empty to disable
//	-k string   catalog source (file path or s3://bucket/key)
//	-U int      max users
//	-B int      max books
//	-i int      accept poll interval, milliseconds
//	-l string   activity log path
//	-r string   S3 region
//	-e string   S3 base endpoint
//	-u string   S3 root user
//	-p string   S3 root password
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-k", "-U", "-B", "-i", "-l", "-r", "-e", "-u", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.HealthAddrGRPC, "g", config.HealthAddrGRPC, "address of the gRPC health endpoint")
	fs.StringVar(&config.CatalogSource, "k", config.CatalogSource, "initial catalog source")
	fs.IntVar(&config.MaxUsers, "U", config.MaxUsers, "max registered users")
	fs.IntVar(&config.MaxBooks, "B", config.MaxBooks, "max catalog entries")

	pollInterval := fs.Int("i", int(config.AcceptPollInterval.Milliseconds()), "accept poll interval (in milliseconds)")

	fs.StringVar(&config.ActivityLogPath, "l", config.ActivityLogPath, "activity log path")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AcceptPollInterval = time.Duration(*pollInterval) * time.Millisecond
}
