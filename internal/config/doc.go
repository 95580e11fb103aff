// Package config handles configuration loading for contact-inbox.
//
// # Configuration File
//
// The file location is, in order:
//
//  1. Path from the CONTACT_INBOX_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/contact-inbox/config.yaml (~/.config when unset)
//
// Files ending in .toml are parsed as TOML; everything else is YAML. Both use
// the same section and key names.
//
// # Environment
//
// Before parsing, .env.local and then .env in the working directory are loaded
// into the process environment. Existing variables are never overwritten.
// Values may then reference variables:
//
//	admin:
//	  secret: "${ADMIN}"
//
// When admin.secret ends up empty the ADMIN variable is used directly. An
// empty secret is valid configuration: the server starts, and every login
// fails as not configured.
//
// # Duration Parsing
//
//	admin:
//	  session_ttl: "24h"
//
// # Example
//
//	server:
//	  http_addr: "127.0.0.1:3000"
//	database:
//	  path: "./data/messages.db"
//	admin:
//	  secret: "${ADMIN}"
//	notify:
//	  matrix:
//	    enabled: true
//	    homeserver: "https://matrix.example.org"
//	    user_id: "@inbox:example.org"
//	    access_token: "${MATRIX_TOKEN}"
//	    room_id: "!abc:example.org"
//	logging:
//	  level: "info"
//	  format: "text"
package config
