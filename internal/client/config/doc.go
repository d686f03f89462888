// Package config loads runtime configuration for the TOTPKeeper CLI.
//
// Sources, in increasing precedence:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. An optional JSON file, selected with the --config flag.
//  3. Environment variables prefixed with TOTPKEEPER_CLIENT_.
//
// Command-line flags are applied on top by the cli package.
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "5s"
//	}
package config
