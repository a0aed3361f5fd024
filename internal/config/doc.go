// Package config provides configuration management for the calculator bot.
//
// Configuration is loaded from environment variables and validated on startup.
// All configuration options have sensible defaults for development; only the
// choice of front end (TELEGRAM_TOKEN and/or STREAM_ENABLED) is mandatory.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg)
package config
