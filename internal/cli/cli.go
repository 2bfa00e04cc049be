// Package cli wires the configuration, the backend store and the services
// behind the friendskids command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/friendskids/friendskids/internal/config"
	"github.com/friendskids/friendskids/internal/engine"
	"github.com/friendskids/friendskids/internal/secrets"
	"github.com/friendskids/friendskids/internal/store"
	"github.com/friendskids/friendskids/internal/store/postgres"
	"github.com/friendskids/friendskids/internal/store/rest"
	"github.com/spf13/cobra"
)

// StoreOpener builds the backend store for the loaded settings.
type StoreOpener func(ctx context.Context, s config.Settings) (store.Store, error)

// App holds the dependencies shared by every command. The zero value is not
// usable; call New.
type App struct {
	// SetupLogging installs the default logger once the settings are known.
	// The returned closer is released by Close.
	SetupLogging func(s config.Settings) io.Closer
	OpenStore    StoreOpener
	Fetcher      engine.VCardFetcher
	Clock        engine.Clock

	// LoadSettings defaults to config.Load.
	LoadSettings func(path string) (config.Settings, error)
	// ResolveSecrets defaults to secrets.Resolve.
	ResolveSecrets func(s *config.Settings)

	configPath string
	debug      bool
	settings   config.Settings
	logCloser  io.Closer
}

// New returns an App wired to the real backends.
func New() *App {
	return &App{
		OpenStore:      OpenStore,
		Fetcher:        engine.NewHTTPFetcher(),
		Clock:          engine.RealClock{},
		LoadSettings:   config.Load,
		ResolveSecrets: secrets.Resolve,
	}
}

// Close releases the log file, if any.
func (a *App) Close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

// Settings returns the settings loaded for the running command.
func (a *App) Settings() config.Settings {
	return a.settings
}

// Command builds the command tree.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           config.CmdRoot,
		Short:         config.CmdDescRoot,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, config.FlagConfig, "", config.FlagDescConfig)
	root.PersistentFlags().BoolVar(&a.debug, config.FlagDebug, false, config.FlagDescDebug)

	root.AddCommand(
		a.serveCommand(),
		a.upcomingCommand(),
		a.importCommand(),
		a.keyringCommand(),
		a.versionCommand(),
	)
	return root
}

// load reads the settings, fills missing credentials from the keyring and
// installs logging.
func (a *App) load() error {
	s, err := a.LoadSettings(a.configPath)
	if err != nil {
		return err
	}
	if a.debug {
		s.Log.Debug = true
	}
	if a.ResolveSecrets != nil {
		a.ResolveSecrets(&s)
	}
	a.settings = s

	if a.SetupLogging != nil && a.logCloser == nil {
		a.logCloser = a.SetupLogging(s)
	}
	return nil
}

// openStore opens the configured backend and logs which one is in use.
func (a *App) openStore(ctx context.Context) (store.Store, error) {
	st, err := a.OpenStore(ctx, a.settings)
	if err != nil {
		return nil, err
	}
	slog.Debug(config.MsgStoreOpened,
		config.LogKeyComponent, config.CompCLI,
		config.LogKeyMode, a.settings.Backend.Mode,
	)
	return st, nil
}

// OpenStore is the default StoreOpener.
func OpenStore(ctx context.Context, s config.Settings) (store.Store, error) {
	switch s.Backend.Mode {
	case config.BackendModePostgres:
		if s.Backend.DatabaseURL == "" {
			return nil, errors.New(config.ErrDatabaseURLEmpty)
		}
		db, err := postgres.New(ctx, s.Backend.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return db, nil

	case config.BackendModeREST:
		client, err := rest.New(s.Backend.URL, s.Backend.AnonKey, s.Backend.ServiceKey)
		if err != nil {
			return nil, err
		}
		return client, nil

	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, s.Backend.Mode)
	}
}
