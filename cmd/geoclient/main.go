// Command geoclient is a terminal client for the geolocate API. It keeps the
// bearer token between runs and applies the same route guard as the web app.
//
// Usage:
//
//	geoclient login -email EMAIL -password PASSWORD
//	geoclient logout
//	geoclient status [-verify]
//	geoclient open ROUTE
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/geolocate/backend/internal/client"
	"github.com/geolocate/backend/internal/config"
	"github.com/geolocate/backend/internal/guard"
	"github.com/geolocate/backend/internal/logging"
	"github.com/geolocate/backend/internal/session"
)

const usage = `usage: geoclient <command> [flags]

commands:
  login -email EMAIL -password PASSWORD
  logout
  status [-verify]
  open ROUTE`

var errUsage = errors.New(usage)

func main() {
	cfg := config.Load()
	logger := logging.NewWithWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg.Client, os.Args[1:], os.Stdout, logger); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	api     *client.APIClient
	session *session.Session
	out     io.Writer
	logger  *slog.Logger
}

func run(ctx context.Context, cfg config.ClientConfig, args []string, out io.Writer, logger *slog.Logger) error {
	if len(args) == 0 {
		return errUsage
	}

	api, err := client.NewAPIClient(cfg)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	sess := session.New(store)
	if err := sess.Restore(ctx); err != nil {
		logger.Warn("session restore failed, continuing signed out", "error", err)
	}

	a := &app{api: api, session: sess, out: out, logger: logger}

	switch args[0] {
	case "login":
		return a.login(ctx, args[1:])
	case "logout":
		return a.logout(ctx)
	case "status":
		return a.status(ctx, args[1:])
	case "open":
		if len(args) != 2 {
			return errUsage
		}
		return a.open(args[1])
	default:
		return errUsage
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	nav := guard.NewNavigator(a.session, guard.NewHistory(guard.LoginPath))
	if d := nav.Resolve(); d.View != guard.ViewLogin {
		fmt.Fprintf(a.out, "already signed in, at %s\n", nav.History().Current())
		return nil
	}

	form := client.NewLoginForm(a.api, a.session, nav)
	if _, err := form.Submit(ctx, *email, *password); err != nil {
		a.logger.Debug("login failed", "error", err)
		return errors.New(form.Message())
	}

	fmt.Fprintf(a.out, "signed in, at %s\n", nav.History().Current())
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func (a *app) status(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	verify := fs.Bool("verify", false, "ask the server whether the token is still accepted")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	fmt.Fprintln(a.out, a.session.State())
	if !*verify || !a.session.IsAuthenticated() {
		return nil
	}

	user, err := a.api.Me(ctx, a.session.Token())
	if errors.Is(err, client.ErrUnauthorized) {
		fmt.Fprintln(a.out, "token rejected by server")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "token accepted for %s\n", user.Email)
	return nil
}

func (a *app) open(route string) error {
	nav := guard.NewNavigator(a.session, guard.NewHistory(route))
	d := nav.Resolve()

	switch d.Action {
	case guard.Render:
		fmt.Fprintf(a.out, "%s view at %s\n", d.View, nav.History().Current())
	case guard.NotFound:
		fmt.Fprintf(a.out, "404: %s\n", nav.History().Current())
	case guard.Placeholder:
		fmt.Fprintln(a.out, "loading")
	default:
		return fmt.Errorf("too many redirects from %s", guard.Clean(route))
	}
	return nil
}

func openStore(ctx context.Context, cfg config.ClientConfig) (session.Store, func(), error) {
	path := cfg.SessionPath

	switch cfg.SessionStore {
	case "file":
		if path == "" {
			dir, err := defaultDir()
			if err != nil {
				return nil, nil, err
			}
			path = filepath.Join(dir, "session.json")
		}
		return session.NewFileStore(path), func() {}, nil
	case "sqlite", "":
		if path == "" {
			dir, err := defaultDir()
			if err != nil {
				return nil, nil, err
			}
			path = filepath.Join(dir, "session.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
		}
		store, err := session.OpenSQLiteStore(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}

func defaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "geolocate"), nil
}
