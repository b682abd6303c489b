package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abelbrown/herbal/internal/catalog"
	"github.com/abelbrown/herbal/internal/config"
	"github.com/abelbrown/herbal/internal/filter"
	"github.com/abelbrown/herbal/internal/identity"
	"github.com/abelbrown/herbal/internal/logging"
	"github.com/abelbrown/herbal/internal/otel"
	"github.com/abelbrown/herbal/internal/session"
	"github.com/abelbrown/herbal/internal/store"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	user       string
	catalog    string
	db         string
	verbose    bool
}

// env is what a command works with once config and storage are open.
type env struct {
	cfg    *config.Config
	kv     *store.Store
	events *otel.Logger
	user   string // --user flag value
}

// eventLogPath returns the path to herbal.events.jsonl.
func eventLogPath() string {
	return filepath.Join(config.Dir(), "herbal.events.jsonl")
}

// openEnv loads config, applies flag overrides and opens the store and the
// event log. The event log is best effort.
func openEnv(opts *globalOptions) (*env, error) {
	path := opts.configPath
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if opts.catalog != "" {
		cfg.Catalog.Source = opts.catalog
	}
	if opts.db != "" {
		cfg.Store.Driver = "sqlite"
		cfg.Store.Path = opts.db
	}

	kv, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	events, err := otel.Open(eventLogPath())
	if err != nil {
		logging.Warn("event log disabled", "err", err)
		events = otel.NewNullLogger()
	}

	return &env{cfg: cfg, kv: kv, events: events, user: opts.user}, nil
}

func openStore(cfg config.StoreConfig) (*store.Store, error) {
	if cfg.Driver == "postgres" {
		kv, err := store.OpenPostgres(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return kv, nil
	}
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	kv, err := store.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.Path, err)
	}
	return kv, nil
}

func (e *env) Close() {
	e.events.Close()
	e.kv.Close()
}

// loadCatalog loads the configured catalog. Any failure, including an
// unusable location, leaves an empty catalog.
func (e *env) loadCatalog(ctx context.Context) []catalog.Plant {
	src, err := catalog.Open(e.cfg.Catalog.Source, catalog.Options{
		Timeout: e.cfg.Catalog.Timeout,
		S3:      e.cfg.Catalog.S3,
	})
	if err != nil {
		logging.Error("catalog unavailable", "source", e.cfg.Catalog.Source, "err", err)
		e.events.Error(otel.KindCatalogError, "main", err)
		return []catalog.Plant{}
	}
	plants := catalog.LoadOrEmpty(ctx, src, e.events)
	logging.Debug("catalog loaded", "source", src.String(), "plants", len(plants))
	if len(plants) == 0 {
		logging.Warn("catalog is empty", "source", src.String())
	}
	return plants
}

// resolveUser returns the acting user.
func (e *env) resolveUser() (string, error) {
	return identity.Resolve(e.kv, e.user, e.cfg.User)
}

// optionalUser is resolveUser for read-only commands: nobody signed in is
// fine and yields "".
func (e *env) optionalUser() (string, error) {
	u, err := e.resolveUser()
	if errors.Is(err, identity.ErrNoUser) {
		return "", nil
	}
	return u, err
}

func (e *env) sessionOptions() session.Options {
	mode, err := filter.ParseMode(e.cfg.UI.DefaultMode)
	if err != nil {
		mode = filter.ModeDisease
	}
	return session.Options{
		Mode:         mode,
		CardDiseases: e.cfg.UI.CardDiseases,
		DarkDefault:  e.cfg.UI.Dark,
		Log:          e.events,
	}
}

// newSession loads the catalog and opens a session for user.
func (e *env) newSession(ctx context.Context, user string) *session.Session {
	return session.New(e.loadCatalog(ctx), e.kv, user, e.sessionOptions())
}
