package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds Folio's runtime settings.
type Config struct {
	APIBase        string
	PageSize       int
	RequestTimeout time.Duration
	LogFile        string
	LogLevel       string
	SessionPath    string
	PrefsPath      string
	Placeholders   Placeholders
}

// Placeholders override the text shown for fields a book leaves empty.
// Empty values keep the built-in placeholders.
type Placeholders struct {
	Title     string `toml:"title" yaml:"title"`
	Author    string `toml:"author" yaml:"author"`
	CreatedAt string `toml:"created_at" yaml:"created_at"`
	Image     string `toml:"image" yaml:"image"`
	Summary   string `toml:"summary" yaml:"summary"`
}

const (
	defaultConfigPath  = "~/.config/folio/config.toml"
	defaultAPIBase     = "http://localhost:8080"
	defaultPageSize    = 4
	defaultTimeoutSecs = 10
	defaultLogFile     = "~/.local/state/folio/folio.log"
	defaultLogLevel    = "info"
	defaultSessionPath = "~/.config/folio/session.toml"
	defaultPrefsPath   = "~/.config/folio/prefs.toml"
)

// raw mirrors the on-disk layout. Pointers distinguish "unset" from zero.
type raw struct {
	APIBase        string       `toml:"api_base" yaml:"api_base"`
	PageSize       *int         `toml:"page_size" yaml:"page_size"`
	RequestTimeout *int         `toml:"request_timeout" yaml:"request_timeout"`
	LogFile        *string      `toml:"log_file" yaml:"log_file"`
	LogLevel       string       `toml:"log_level" yaml:"log_level"`
	SessionPath    string       `toml:"session_path" yaml:"session_path"`
	PrefsPath      string       `toml:"prefs_path" yaml:"prefs_path"`
	Placeholders   Placeholders `toml:"placeholders" yaml:"placeholders"`
}

// DefaultPath returns the config file consulted when none is given.
func DefaultPath() string {
	return defaultConfigPath
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		APIBase:        defaultAPIBase,
		PageSize:       defaultPageSize,
		RequestTimeout: defaultTimeoutSecs * time.Second,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
		SessionPath:    mustExpand(defaultSessionPath),
		PrefsPath:      mustExpand(defaultPrefsPath),
	}
}

// Load reads the config at path, falling back to defaults when the file is missing.
// Files ending in .yaml or .yml are parsed as YAML, everything else as TOML.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var r raw
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(bytes, &r); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := toml.Unmarshal(bytes, &r); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	return r.normalize()
}

func (r raw) normalize() (Config, error) {
	cfg := Defaults()

	if v := strings.TrimSpace(r.APIBase); v != "" {
		cfg.APIBase = v
	}
	if r.PageSize != nil {
		if *r.PageSize < 1 {
			return Config{}, fmt.Errorf("page_size must be positive, got %d", *r.PageSize)
		}
		cfg.PageSize = *r.PageSize
	}
	if r.RequestTimeout != nil {
		if *r.RequestTimeout < 1 {
			return Config{}, fmt.Errorf("request_timeout must be positive, got %d", *r.RequestTimeout)
		}
		cfg.RequestTimeout = time.Duration(*r.RequestTimeout) * time.Second
	}
	if r.LogFile != nil {
		// An explicit empty log_file disables logging.
		cfg.LogFile = ""
		if v := strings.TrimSpace(*r.LogFile); v != "" {
			cfg.LogFile = mustExpand(v)
		}
	}
	if v := strings.ToLower(strings.TrimSpace(r.LogLevel)); v != "" {
		switch v {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = v
		default:
			return Config{}, fmt.Errorf("log_level %q: want debug, info, warn or error", r.LogLevel)
		}
	}
	if v := strings.TrimSpace(r.SessionPath); v != "" {
		cfg.SessionPath = mustExpand(v)
	}
	if v := strings.TrimSpace(r.PrefsPath); v != "" {
		cfg.PrefsPath = mustExpand(v)
	}

	cfg.Placeholders = Placeholders{
		Title:     strings.TrimSpace(r.Placeholders.Title),
		Author:    strings.TrimSpace(r.Placeholders.Author),
		CreatedAt: strings.TrimSpace(r.Placeholders.CreatedAt),
		Image:     strings.TrimSpace(r.Placeholders.Image),
		Summary:   strings.TrimSpace(r.Placeholders.Summary),
	}
	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
