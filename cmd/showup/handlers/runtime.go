package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	cookiejar "github.com/juju/persistent-cookiejar"
	"github.com/mattn/go-isatty"

	"github.com/showup-events/showup/internal/api"
	"github.com/showup-events/showup/internal/config"
	"github.com/showup-events/showup/internal/connection"
	"github.com/showup-events/showup/internal/logging"
	"github.com/showup-events/showup/internal/metrics"
	"github.com/showup-events/showup/internal/session"
)

type settingsKey struct{}

// WithSettings stores resolved settings in ctx.
func WithSettings(ctx context.Context, s *config.Settings) context.Context {
	return context.WithValue(ctx, settingsKey{}, s)
}

// settingsFrom returns the settings in ctx, or the defaults.
func settingsFrom(ctx context.Context) (*config.Settings, error) {
	if s, ok := ctx.Value(settingsKey{}).(*config.Settings); ok && s != nil {
		return s, nil
	}
	return config.Load("", nil)
}

// Runtime bundles the clients shared by the commands.
type Runtime struct {
	Settings    *config.Settings
	Log         logr.Logger
	Metrics     *metrics.Recorder
	Client      *api.Client
	Session     *session.Session
	Connections *connection.Store
}

// Factory function variables - can be replaced in tests.
var (
	// newRuntime builds the clients for a command.
	newRuntime = buildRuntime

	// isInteractive reports whether stdin is a terminal.
	isInteractive = func() bool {
		fd := os.Stdin.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
)

func buildRuntime(ctx context.Context, s *config.Settings) (*Runtime, error) {
	log := logging.FromContext(ctx)

	if err := os.MkdirAll(s.State.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{Filename: s.CookieFile()})
	if err != nil {
		return nil, fmt.Errorf("failed to load cookies: %w", err)
	}

	rec := metrics.New()
	client := api.New(api.Options{
		BaseURL: s.API.URL,
		Timeout: s.HTTP.Timeout,
		Retries: s.HTTP.Retries,
		Jar:     jar,
		Metrics: rec,
		Logger:  log.WithName("api"),
	})

	sess, err := session.New(&session.FileStore{Path: s.SessionFile()}, client, log.WithName("session"))
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	client.SetOnUnauthorized(sess.Clear)

	return &Runtime{
		Settings:    s,
		Log:         log,
		Metrics:     rec,
		Client:      client,
		Session:     sess,
		Connections: connection.NewStore(client, log.WithName("connections")),
	}, nil
}

// Close saves cookies and writes the metrics file.
func (r *Runtime) Close() error {
	var errs []error
	if r.Client != nil {
		errs = append(errs, r.Client.Close())
	}
	if err := r.Metrics.WriteFile(r.Settings.Metrics.File); err != nil {
		errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
	}
	return errors.Join(errs...)
}

// withRuntime runs fn with a fresh runtime and closes it afterwards.
func withRuntime(ctx context.Context, fn func(*Runtime) error) (err error) {
	s, err := settingsFrom(ctx)
	if err != nil {
		return err
	}
	rt, err := newRuntime(ctx, s)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			rt.Log.Error(cerr, "Failed to save state")
		}
	}()
	return fn(rt)
}

// requireUser hydrates the session and returns the signed-in user's id.
func requireUser(ctx context.Context, rt *Runtime) (string, error) {
	if err := rt.Session.Hydrate(ctx); err != nil {
		rt.Log.V(1).Info("Session refresh incomplete", "error", err.Error())
	}
	return rt.Session.UserID()
}
