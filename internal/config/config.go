// Package config loads server settings from command-line flags and
// environment variables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strconv"
)

const defaultListenAddr = "127.0.0.1:8000"

// Config holds the server configuration.
type Config struct {
	// DatabasePath is the path to the SQLite database file. Required.
	DatabasePath string

	// ListenAddr is the ip:port the HTTP server binds to.
	ListenAddr string
}

// Load builds the configuration from environment variables and the given
// command-line arguments, flags taking precedence over the environment.
//
// Supported flags:
//
//	-d string   path to the SQLite database file (env: DATABASE_PATH)
//	-l string   ip:port to listen on (env: LISTEN_ADDR, default 127.0.0.1:8000)
//
// An invalid listen address or a missing database path is returned as an
// error; callers treat it as fatal at startup.
func Load(args []string) (*Config, error) {
	cfg := &Config{
		DatabasePath: os.Getenv("DATABASE_PATH"),
		ListenAddr:   defaultListenAddr,
	}
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}

	fs := flag.NewFlagSet("groupcast", flag.ContinueOnError)
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the SQLite database file")
	fs.StringVar(&cfg.ListenAddr, "l", cfg.ListenAddr, "ip:port to listen on")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.DatabasePath == "" {
		return nil, errors.New("database path not specified")
	}
	if err := ValidateListenAddr(cfg.ListenAddr); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateListenAddr checks that addr is a literal IP address followed by a
// port in the 1-65535 range.
func ValidateListenAddr(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if _, err := netip.ParseAddr(host); err != nil {
		return fmt.Errorf("invalid IP address %q", host)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("port %q not an integer", port)
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("port %d not in 1-65535 range", n)
	}
	return nil
}
