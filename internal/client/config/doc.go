// Package config loads runtime configuration for the projectboard CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config. Comments and
//     trailing commas are accepted.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the REST API
//	-f string   session file path
//	-t int      request timeout (seconds)
//	-v          log API requests to stderr
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:5001",
//	  "session_file": "/home/me/.config/projectboard/session.json",
//	  "request_timeout": "10s",
//	  "verbose": false
//	}
package config
