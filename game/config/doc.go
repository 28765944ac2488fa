// Package config provides process configuration for the board server.
//
// Settings come from the environment, optionally seeded from a .env file:
//
//	HOST              listen host (default localhost)
//	PORT              listen port (default 8080)
//	LOG_LEVEL         debug, info, warn or error (default info)
//	LOG_FORMAT        text or json (default text)
//	READ_TIMEOUT      HTTP read timeout (default 15s)
//	WRITE_TIMEOUT     HTTP write timeout (default 15s)
//	IDLE_TIMEOUT      HTTP idle timeout (default 60s)
//	SHUTDOWN_TIMEOUT  graceful shutdown budget (default 10s)
//	NGROK_ENABLED     start an ngrok tunnel
//	NGROK_AUTHTOKEN   ngrok token (NGROK_AUTH_TOKEN also accepted)
//	NGROK_DOMAIN      custom ngrok domain
//
// Command line flags override these values in package main.
//
// Usage:
//
//	if _, err := config.LoadDotEnv(); err != nil {
//		log.Fatal(err)
//	}
//	cfg, err := config.Parse()
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//	logger := cfg.NewLogger(os.Stderr)
package config
