// Package config loads Folio's configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/folio/config.toml
//  3. If the file doesn't exist, use Defaults()
//  4. If the file exists but fields are missing or empty, use defaults for those
//
// Files ending in .yaml or .yml are parsed as YAML. Everything else is TOML.
//
// # Default Values
//
//   - api_base: http://localhost:8080
//   - page_size: 4
//   - request_timeout: 10 (seconds)
//   - log_file: ~/.local/state/folio/folio.log
//   - log_level: info
//   - session_path: ~/.config/folio/session.toml
//   - prefs_path: ~/.config/folio/prefs.toml
//
// # TOML Format
//
//	api_base = "http://catalog.internal:8080"
//	page_size = 6
//	request_timeout = 5
//	log_file = ""          # disables logging
//	log_level = "debug"
//
//	[placeholders]
//	title = "Untitled"
//	author = "unknown"
//	image = "https://via.placeholder.com/140x200?text=No+Image"
//
// # Validation
//
// Load rejects a non-positive page_size or request_timeout and an unknown
// log_level. All string values are trimmed and tilde paths are expanded.
package config
