// Package commands implements the storefront CLI commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/branchd-dev/storefront/internal/cli/auth"
	"github.com/branchd-dev/storefront/internal/cli/client"
	"github.com/branchd-dev/storefront/internal/cli/config"
	"github.com/branchd-dev/storefront/internal/cli/serverselect"
	appconfig "github.com/branchd-dev/storefront/internal/config"
	"github.com/branchd-dev/storefront/internal/flows"
	"github.com/branchd-dev/storefront/internal/notify"
	"github.com/branchd-dev/storefront/internal/session"
	"github.com/branchd-dev/storefront/internal/storage"
	"github.com/branchd-dev/storefront/internal/storefront"
)

// ErrReported means the failure was already shown to the user as a notification
var ErrReported = errors.New("failure reported")

// Env is everything a command needs. The root command fills it before RunE; tests
// build one directly.
type Env struct {
	Config   *appconfig.Config
	Out      io.Writer
	Err      io.Writer
	Prompter Prompter
	Selector *serverselect.Selector
	Logger   zerolog.Logger
	Notifier notify.Notifier

	// Dir is where storefront.yaml lookup starts
	Dir string
	// Server is the URL or alias given with --server
	Server string

	server *config.Server
	api    *client.Client
	store  *session.Store
	db     *gorm.DB
}

// NewEnv returns an Env writing to the process stdout/stderr
func NewEnv(cfg *appconfig.Config, logger zerolog.Logger) *Env {
	dir, _ := os.Getwd()
	return &Env{
		Config:   cfg,
		Out:      os.Stdout,
		Err:      os.Stderr,
		Prompter: NewTerminalPrompter(os.Stdin, os.Stdout),
		Selector: serverselect.New(),
		Logger:   logger,
		Notifier: notify.NewConsole(os.Stdout),
		Dir:      dir,
	}
}

// ResolveServer picks the backend profile: STOREFRONT_API_URL, then --server, then
// the selected or only server of storefront.yaml.
func (e *Env) ResolveServer() (*config.Server, error) {
	if e.server != nil {
		return e.server, nil
	}

	if e.Config.APIURL != "" {
		url, err := config.NormalizeURL(e.Config.APIURL)
		if err != nil {
			return nil, err
		}
		e.server = &config.Server{Alias: "env", URL: url}
		return e.server, nil
	}

	cfg, _, err := config.LoadFromDir(e.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'storefront init <api-url>' to create a configuration file", err)
	}

	server, err := e.Selector.ResolveServer(cfg, e.Server)
	if err != nil {
		return nil, err
	}
	e.server = server
	return server, nil
}

// API returns the client of the resolved backend
func (e *Env) API() (*client.Client, error) {
	if e.api != nil {
		return e.api, nil
	}
	server, err := e.ResolveServer()
	if err != nil {
		return nil, err
	}
	e.api = client.New(server.URL,
		client.WithTimeout(e.Config.RequestTimeout),
		client.WithLogger(e.Logger.With().Str("profile", server.URL).Logger()),
	)
	return e.api, nil
}

// DB opens the local database on first use
func (e *Env) DB() (*gorm.DB, error) {
	if e.db != nil {
		return e.db, nil
	}
	db, err := storage.Open(e.Config.DatabasePath(), e.Logger)
	if err != nil {
		return nil, err
	}
	e.db = db
	return db, nil
}

func (e *Env) persistence(profile string) (session.Persistence, error) {
	switch e.Config.SessionBackend {
	case appconfig.SessionFile:
		return auth.NewFileStore(e.Config.SessionFilePath(profile)), nil
	case appconfig.SessionSQLite:
		db, err := e.DB()
		if err != nil {
			return nil, err
		}
		return storage.NewSessionStore(db, profile), nil
	case appconfig.SessionMemory:
		return session.NewMemory(), nil
	default:
		return auth.NewKeyringStore(profile), nil
	}
}

// Session returns the hydrated session store of the resolved backend
func (e *Env) Session(ctx context.Context) (*session.Store, error) {
	if e.store != nil {
		return e.store, nil
	}
	server, err := e.ResolveServer()
	if err != nil {
		return nil, err
	}
	p, err := e.persistence(server.URL)
	if err != nil {
		return nil, err
	}
	store := session.NewStore(p, e.Logger.With().Str("profile", server.URL).Logger())
	store.Hydrate(ctx)
	e.store = store
	return store, nil
}

// Favorites returns the favorite set of the signed-in user
func (e *Env) Favorites(ctx context.Context) (*storefront.Favorites, error) {
	store, err := e.Session(ctx)
	if err != nil {
		return nil, err
	}
	db, err := e.DB()
	if err != nil {
		return nil, err
	}
	return storefront.NewFavorites(storage.NewFavoriteStore(db, e.server.URL), store.Session().User.ID), nil
}

// FlowOptions returns the options shared by every credential flow
func (e *Env) FlowOptions(redirect func(string)) []flows.Option {
	return []flows.Option{
		flows.WithNotifier(e.Notifier),
		flows.WithLogger(e.Logger),
		flows.WithRequestTimeout(e.Config.RequestTimeout),
		flows.WithRedirectDelay(e.Config.RedirectDelay),
		flows.WithRedirect(redirect),
	}
}

// Close releases the local database
func (e *Env) Close() error {
	if e.db == nil {
		return nil
	}
	err := storage.Close(e.db)
	e.db = nil
	return err
}

// report shows err as an error notification and marks it as reported
func (e *Env) report(err error) error {
	e.Notifier.Error(client.Message(err))
	return reported(err)
}

// reported marks an error a flow has already notified
func reported(err error) error {
	return fmt.Errorf("%w: %w", ErrReported, err)
}

type envKey struct{}

// WithEnv attaches env to ctx for commands run under it
func WithEnv(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, envKey{}, env)
}

// envFrom returns the Env attached to the command context
func envFrom(cmd *cobra.Command) *Env {
	env, _ := cmd.Context().Value(envKey{}).(*Env)
	if env == nil {
		panic("commands: no Env attached to the command context")
	}
	return env
}
