// Package app is the composition root for folio.
//
// Setup reads the configuration, builds the zap logger, loads preferences and
// the session flag once, and constructs the catalog client. The resulting Env
// is shared by the TUI (Run) and by the CLI subcommands, so both see the same
// settings and the same session.
//
// # Startup
//
//  1. config.Load reads ~/.config/folio/config.toml (or a YAML file)
//  2. logging.New opens the JSON log file
//  3. prefs.Load restores the theme and last list view
//  4. session.Load reads the logged-in flag
//  5. catalog.NewClient targets api_base with the configured timeout
//
// # Error Handling
//
// A bad config file or an unusable log path is fatal. Missing preferences
// and an unreadable session file degrade to defaults.
package app
