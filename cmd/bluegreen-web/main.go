// Copyright (c) 2026 Sebastian Schmelzer / Data Rocks AG.
// All rights reserved. Use of this source code is governed
// by a MIT license that can be found in the LICENSE file.
//
// Package main runs the blue/green demo web server.
//
// The server serves static assets from a public directory and answers the
// probe and info endpoints an orchestrator uses during a blue/green rollout:
//   - GET /health    liveness, with environment label and timestamp
//   - GET /ready     readiness, with environment label
//   - GET /api/info  environment, version, timestamp and hostname
//
// The environment label comes from the ENVIRONMENT variable and is fixed for
// the lifetime of the process.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"bluegreen-web/internal/config"
	"bluegreen-web/internal/server"
)

// version is set at build time via -ldflags "-X main.version=<value>".
var version = "dev"

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: %s [flags] [command]

Commands:
  validate    Validate configuration and public directory, then exit

Flags:
  -h, --help      Show this help message
  --version       Print version and exit
  -q              Warnings and errors only
  -v              Debug output
  -vv             Trace output (most verbose)

Default log level is info (startup banner and access logs).

Environment:
  ENVIRONMENT        Deployment label reported by all endpoints (default: unknown)
  CONFIG_PATH        Path to optional config file (default: config.yaml)
  SERVER_PORT        Listen port (default: 3000)
  SERVER_PUBLIC_DIR  Static asset directory (default: public)
`, os.Args[0])
}

// options holds the parsed top-level command line.
type options struct {
	showVersion bool
	showHelp    bool
	logLevel    slog.Level
	remaining   []string
}

func parseArgs(args []string) options {
	opts := options{logLevel: slog.LevelInfo}
	for _, arg := range args {
		switch arg {
		case "--version":
			opts.showVersion = true
		case "-h", "--help":
			opts.showHelp = true
			opts.remaining = append(opts.remaining, arg) // pass through for subcommand help
		case "-vv":
			opts.logLevel = slog.Level(-8) // Trace: below slog.LevelDebug (-4)
		case "-v":
			if opts.logLevel > slog.LevelDebug {
				opts.logLevel = slog.LevelDebug
			}
		case "-q":
			if opts.logLevel == slog.LevelInfo {
				opts.logLevel = slog.LevelWarn
			}
		default:
			opts.remaining = append(opts.remaining, arg)
		}
	}
	return opts
}

// configSource returns the config path and whether the file may be absent.
// Only the default path is optional; a path the operator named must exist.
func configSource(flagPath string) (string, bool) {
	if flagPath != "" {
		return flagPath, false
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p, false
	}
	return config.DefaultConfigPath, true
}

func main() {
	opts := parseArgs(os.Args[1:])

	if opts.showVersion {
		fmt.Println(version)
		return
	}
	hasSubcommand := len(opts.remaining) > 0 && opts.remaining[0] == "validate"
	if opts.showHelp && !hasSubcommand {
		printUsage()
		return
	}

	// Initialize structured JSON logging with configured level
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: opts.logLevel}))
	slog.SetDefault(logger)

	if hasSubcommand {
		fs := flag.NewFlagSet("validate", flag.ExitOnError)
		configFlag := fs.String("config", "", "path to configuration file")
		if err := fs.Parse(opts.remaining[1:]); err != nil {
			slog.Error("Failed to parse flags", "err", err)
			os.Exit(1)
		}

		configPath, optional := configSource(*configFlag)
		if err := config.RunValidate(configPath, optional); err != nil {
			slog.Error("Configuration validation failed", "path", configPath, "err", err)
			os.Exit(1)
		}
		slog.Info("Configuration is valid", "path", configPath)
		return
	}
	if len(opts.remaining) > 0 {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", opts.remaining[0])
		printUsage()
		os.Exit(2)
	}

	configPath, optional := configSource("")
	cfg, err := config.LoadConfig(configPath, optional)
	if err != nil {
		slog.Error("Failed to load configuration", "path", configPath, "err", err)
		os.Exit(1)
	}

	srv := server.New(cfg)
	if err := srv.Listen(); err != nil {
		slog.Error("Failed to bind listener", "port", cfg.Server.Port, "err", err)
		os.Exit(1)
	}

	slog.Info(fmt.Sprintf("%s environment running on port %s", strings.ToUpper(cfg.Server.Environment), cfg.Server.Port),
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"public_dir", cfg.Server.PublicDir,
		"version", version)

	if err := srv.Serve(); err != nil {
		slog.Error("Server error", "err", err)
		os.Exit(1)
	}
}
