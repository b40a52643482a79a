package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/five82/folio/internal/catalog"
	"github.com/five82/folio/internal/config"
	"github.com/five82/folio/internal/logging"
	"github.com/five82/folio/internal/prefs"
	"github.com/five82/folio/internal/session"
	"github.com/five82/folio/internal/state"
	"github.com/five82/folio/internal/ui"
)

// Options configure the folio application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses the config value
	Debug      bool
}

// Env holds everything the TUI and the CLI commands share.
type Env struct {
	Config   config.Config
	Logger   *zap.Logger
	Client   *catalog.Client
	Session  session.Context
	Prefs    prefs.Prefs
	Defaults state.Defaults

	prefsPath string
}

// Setup loads configuration, preferences and the session flag, and builds
// the logger and catalog client.
func Setup(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogFile, cfg.LogLevel, opts.Debug)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	prefsPath := strings.TrimSpace(opts.PrefsPath)
	if prefsPath == "" {
		prefsPath = cfg.PrefsPath
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		logger.Warn("prefs load failed", zap.String("path", prefsPath), zap.Error(err))
	}

	sess, err := session.Load(cfg.SessionPath)
	if err != nil {
		// An unreadable session only means nobody is logged in.
		logger.Warn("session load failed", zap.String("path", cfg.SessionPath), zap.Error(err))
	}

	client, err := catalog.NewClient(cfg.APIBase,
		catalog.WithLogger(logger),
		catalog.WithTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("init catalog client: %w", err)
	}

	logger.Info("folio starting",
		zap.String("api_base", client.BaseURL()),
		zap.Int("page_size", cfg.PageSize),
		zap.Bool("logged_in", sess.Active()),
	)

	return &Env{
		Config:    cfg,
		Logger:    logger,
		Client:    client,
		Session:   sess,
		Prefs:     userPrefs,
		Defaults:  placeholderDefaults(cfg.Placeholders),
		prefsPath: prefsPath,
	}, nil
}

// Close flushes the logger.
func (e *Env) Close() {
	_ = e.Logger.Sync()
}

// UIOptions returns the options for the TUI.
func (e *Env) UIOptions(ctx context.Context) ui.Options {
	return ui.Options{
		Context:     ctx,
		Service:     e.Client,
		Logger:      e.Logger.Named("ui"),
		Session:     e.Session,
		SessionPath: e.Config.SessionPath,
		PrefsPath:   e.prefsPath,
		ThemeName:   e.Prefs.Theme,
		StartView:   ui.ViewFromPref(e.Prefs.LastView),
		PageSize:    e.Config.PageSize,
		Defaults:    e.Defaults,
	}
}

// Run boots the folio TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Setup(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := ui.Run(env.UIOptions(ctx)); err != nil {
		env.Logger.Error("tui exited with error", zap.Error(err))
		return err
	}
	return nil
}

func placeholderDefaults(p config.Placeholders) state.Defaults {
	return state.Defaults{
		Title:     p.Title,
		Author:    p.Author,
		CreatedAt: p.CreatedAt,
		Image:     p.Image,
		Summary:   p.Summary,
	}.Merge(state.BuiltinDefaults())
}
