// ABOUTME: Entry point for contact-inbox
// ABOUTME: Serves the contact form API and admin inbox, plus offline admin commands

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/contact-inbox/internal/config"
	"github.com/2389/contact-inbox/internal/server"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                  _             _        _       _
  ___ ___  _ __ | |_ __ _  ___| |_     (_)_ __ | |__   _____  __
 / __/ _ \| '_ \| __/ _' |/ __| __|____| | '_ \| '_ \ / _ \ \/ /
| (_| (_) | | | | || (_| | (__| ||_____| | | | | |_) | (_) >  <
 \___\___/|_| |_|\__\__,_|\___|\__|    |_|_| |_|_.__/ \___/_/\_\
`

func usage() {
	fmt.Println("Usage: contact-inbox <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                      Start the server")
	fmt.Println("  init                       Create a new config file interactively")
	fmt.Println("  health                     Check server health")
	fmt.Println("  messages [--unread]        List stored messages")
	fmt.Println("  messages show|read|delete ID")
	fmt.Println("                             Show, mark read, or delete one message")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	case "messages":
		err = runMessagesCommand(ctx, os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := config.DefaultPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s (%s)\n", cfg.Database.Path, cfg.Database.Driver)
	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.HTTPS {
			yellow.Print(" [https]")
		}
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	} else {
		green.Print("    ▶ ")
		fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	}
	if cfg.Notify.Matrix.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Matrix:    %s\n", cfg.Notify.Matrix.RoomID)
	}
	if cfg.Admin.Secret == "" {
		yellow.Print("    ▲ ")
		fmt.Println("Admin:     no secret set, admin login disabled")
	}

	fmt.Println()

	logger.Info("starting contact-inbox",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"database", cfg.Database.Path,
	)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Run(ctx)
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}
