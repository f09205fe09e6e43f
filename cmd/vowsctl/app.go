package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vows-and-wishes/config"
	"vows-and-wishes/internal/client/catalog"
	"vows-and-wishes/internal/client/notify"
	"vows-and-wishes/internal/client/session"
	"vows-and-wishes/pkg/apiclient"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

type command func(ctx context.Context, cfg *config.ClientConfig, log *logrus.Logger, args []string) error

var commands = map[string]command{
	"services":     runServices,
	"search":       runSearch,
	"show":         runShow,
	"availability": runAvailability,
	"book":         runBook,
	"chat":         runChat,
	"login":        runLogin,
	"register":     runRegister,
	"profile":      runProfile,
	"logout":       runLogout,
	"seed":         runSeed,
}

// app holds the client-side collaborators shared by every command
type app struct {
	cfg      *config.ClientConfig
	log      *logrus.Logger
	api      *apiclient.Client
	session  *session.Session
	notifier notify.Notifier
}

// newFlagSet registers the flags every command accepts
func newFlagSet(name string, cfg *config.ClientConfig) (*pflag.FlagSet, *bool) {
	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	fs.StringVar(&cfg.BackendURL, "backend", cfg.BackendURL, "backend base URL")
	fs.StringVar(&cfg.SessionFile, "session-file", cfg.SessionFile, "where the session token is kept")
	verbose := fs.BoolP("verbose", "v", false, "log debug output")
	return fs, verbose
}

func newApp(cfg *config.ClientConfig, log *logrus.Logger, verbose bool) (*app, error) {
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	store, err := session.NewFileStore(cfg.SessionFile)
	if err != nil {
		return nil, err
	}
	log.Debugf("Using session file %s", store.Path())

	api := apiclient.New(cfg.BackendURL, apiclient.WithTimeout(cfg.RequestTimeout))
	return &app{
		cfg:      cfg,
		log:      log,
		api:      api,
		session:  session.New(api, store, log),
		notifier: notify.NewLogNotifier(log),
	}, nil
}

// newCatalog builds a controller bound to the app's backend
func (a *app) newCatalog(opts ...catalog.Option) *catalog.Controller {
	opts = append([]catalog.Option{catalog.WithDebounce(a.cfg.SearchDebounce)}, opts...)
	return catalog.NewController(a.api, a.notifier, a.log, opts...)
}

// start seeds the backend, restores the session and, when c is set, loads
// the first page of the catalog. The three run concurrently; only a broken
// session store fails startup.
func (a *app) start(ctx context.Context, c *catalog.Controller) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		result, err := a.api.InitData(gctx)
		if err != nil {
			a.log.Debugf("Sample data not initialized: %v", err)
			return nil
		}
		a.log.Debugf("Init data: %s", result.Message)
		return nil
	})

	g.Go(func() error {
		if err := a.session.Init(gctx); err != nil {
			return fmt.Errorf("restore session: %w", err)
		}
		return nil
	})

	if c != nil {
		g.Go(func() error {
			if err := c.Refresh(gctx); err != nil && !errors.Is(err, context.Canceled) {
				a.log.Debugf("Initial catalog load failed: %v", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// reportedError marks an error the user has already been shown
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

func reported(err error) error {
	return reportedError{err}
}

// requireLogin reports and returns an error when no user is signed in
func (a *app) requireLogin() error {
	if a.session.IsAuthenticated() {
		return nil
	}
	a.notifier.Error("Please login first")
	return reported(errors.New("not logged in"))
}

// waitFor blocks until ch yields or d passes
func waitFor(ctx context.Context, ch <-chan struct{}, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}
