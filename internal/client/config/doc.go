// Package config loads runtime configuration for the library workload
// generator.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the library listener
//	-l string   activity log path
//	-t int      dial timeout (seconds)
//
// Every argument that is not a flag or a flag value is a scenario file; see
// ValueFlags.
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "5s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:8080",
//	  "activity_log_path": "log.txt",
//	  "dial_timeout": "5s"
//	}
package config
