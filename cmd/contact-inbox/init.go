// ABOUTME: Interactive config file generation for contact-inbox
// ABOUTME: Prompts for listen address, database, admin secret source, and notifications

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/2389/contact-inbox/internal/config"
)

// initAnswers holds everything runInit asks for.
type initAnswers struct {
	HTTPAddr         string
	DBPath           string
	AdminSecret      string
	SecureCookies    bool
	TailscaleEnabled bool
	TSHostname       string
	TSAuthKey        string
	TSHTTPS          bool
	MatrixEnabled    bool
	MatrixHomeserver string
	MatrixUserID     string
	MatrixToken      string
	MatrixRoomID     string
	LogLevel         string
	LogFormat        string
}

// getDataPath returns the path to the contact-inbox data directory.
// Priority: XDG_DATA_HOME/contact-inbox > ~/.local/share/contact-inbox
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data"
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, "contact-inbox")
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("contact-inbox configuration setup")
	fmt.Println("=================================")
	fmt.Println()

	outputFile := prompt(reader, "Config file path", config.DefaultPath())

	if _, err := os.Stat(outputFile); err == nil {
		if !yes(prompt(reader, "File exists. Overwrite?", "no")) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	a := askInitAnswers(reader)

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	// The file may hold secrets.
	if err := os.WriteFile(outputFile, []byte(renderConfig(a)), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	dataDir := filepath.Dir(a.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Printf("Data directory: %s\n", dataDir)
	if a.AdminSecret == "${"+config.AdminSecretEnv+"}" {
		fmt.Printf("\nSet %s (in the environment or .env.local) before logging in.\n", config.AdminSecretEnv)
	}
	fmt.Println("\nTo start the server:")
	fmt.Printf("  contact-inbox serve\n")

	return nil
}

func askInitAnswers(reader *bufio.Reader) initAnswers {
	var a initAnswers

	fmt.Println("\n--- Server Configuration ---")
	a.HTTPAddr = prompt(reader, "HTTP address", "localhost:3000")

	fmt.Println("\n--- Database Configuration ---")
	a.DBPath = prompt(reader, "SQLite database path", filepath.Join(getDataPath(), "messages.db"))

	fmt.Println("\n--- Admin Configuration ---")
	a.AdminSecret = prompt(reader, "Admin secret (default reads the ADMIN variable)", "${"+config.AdminSecretEnv+"}")
	a.SecureCookies = yes(prompt(reader, "Always mark session cookies Secure?", "no"))

	fmt.Println("\n--- Tailscale Configuration ---")
	a.TailscaleEnabled = yes(prompt(reader, "Enable Tailscale?", "no"))
	if a.TailscaleEnabled {
		a.TSHostname = prompt(reader, "Tailscale hostname", "contact-inbox")
		a.TSAuthKey = prompt(reader, "Tailscale auth key (leave empty to use TS_AUTHKEY)", "")
		a.TSHTTPS = yes(prompt(reader, "Serve HTTPS with tailnet certs?", "no"))
	}

	fmt.Println("\n--- Matrix Notifications ---")
	a.MatrixEnabled = yes(prompt(reader, "Notify a Matrix room on new messages?", "no"))
	if a.MatrixEnabled {
		a.MatrixHomeserver = prompt(reader, "Homeserver URL", "https://matrix.org")
		a.MatrixUserID = prompt(reader, "Bot user ID", "")
		a.MatrixToken = prompt(reader, "Access token", "${MATRIX_ACCESS_TOKEN}")
		a.MatrixRoomID = prompt(reader, "Room ID", "")
	}

	fmt.Println("\n--- Logging Configuration ---")
	a.LogLevel = prompt(reader, "Log level (debug/info/warn/error)", "info")
	a.LogFormat = prompt(reader, "Log format (text/json)", "text")

	return a
}

// renderConfig produces the YAML written by runInit.
func renderConfig(a initAnswers) string {
	var cfg strings.Builder
	cfg.WriteString("# contact-inbox configuration\n")
	cfg.WriteString("# Generated by contact-inbox init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: %q\n", a.HTTPAddr))
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: %q\n", a.DBPath))
	cfg.WriteString(fmt.Sprintf("  driver: %q\n", config.DefaultDriver))
	cfg.WriteString("\n")

	cfg.WriteString("admin:\n")
	cfg.WriteString(fmt.Sprintf("  secret: %q\n", a.AdminSecret))
	cfg.WriteString("  session_ttl: \"24h\"\n")
	cfg.WriteString(fmt.Sprintf("  secure_cookies: %t\n", a.SecureCookies))
	cfg.WriteString("\n")

	cfg.WriteString("tailscale:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", a.TailscaleEnabled))
	if a.TailscaleEnabled {
		cfg.WriteString(fmt.Sprintf("  hostname: %q\n", a.TSHostname))
		if a.TSAuthKey != "" {
			cfg.WriteString(fmt.Sprintf("  auth_key: %q\n", a.TSAuthKey))
		}
		cfg.WriteString(fmt.Sprintf("  https: %t\n", a.TSHTTPS))
	}
	cfg.WriteString("\n")

	cfg.WriteString("notify:\n")
	cfg.WriteString("  matrix:\n")
	cfg.WriteString(fmt.Sprintf("    enabled: %t\n", a.MatrixEnabled))
	if a.MatrixEnabled {
		cfg.WriteString(fmt.Sprintf("    homeserver: %q\n", a.MatrixHomeserver))
		cfg.WriteString(fmt.Sprintf("    user_id: %q\n", a.MatrixUserID))
		cfg.WriteString(fmt.Sprintf("    access_token: %q\n", a.MatrixToken))
		cfg.WriteString(fmt.Sprintf("    room_id: %q\n", a.MatrixRoomID))
	}
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", a.LogLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n", a.LogFormat))

	return cfg.String()
}

func yes(s string) bool {
	s = strings.ToLower(s)
	return s == "yes" || s == "y"
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	return promptTo(os.Stdout, reader, question, defaultVal)
}

func promptTo(w io.Writer, reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(w, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(w, "%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Fprintln(w)
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
