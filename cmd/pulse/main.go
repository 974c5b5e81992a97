package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/picklepulse/pulse/internal/app"
	"github.com/picklepulse/pulse/internal/credential"
	"github.com/picklepulse/pulse/internal/model"
	"github.com/picklepulse/pulse/internal/remote"
	"github.com/picklepulse/pulse/internal/session"
	"github.com/picklepulse/pulse/internal/store"
	"github.com/picklepulse/pulse/internal/tracker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pulse: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		return err
	}

	sess, err := session.Load(session.DefaultStatePath(model.ConfigDir()))
	if err != nil {
		return err
	}

	guestStore, err := store.NewGuestStore(cfg.Storage.GuestDBPath, sess.GuestID)
	if err != nil {
		return fmt.Errorf("opening guest store: %w", err)
	}
	defer guestStore.Close()

	client := remote.NewClient(
		cfg.Server.BaseURL,
		cfg.Server.AnonKey,
		storedAccessToken,
		time.Duration(cfg.Server.TimeoutSec)*time.Second,
	)
	authClient := remote.NewAuthClient(client)

	remoteStore := remote.NewStore(client, func() (string, error) {
		token, err := credential.Get(credential.KeyAccessToken)
		if err != nil {
			return "", err
		}
		return remote.PrincipalFromToken(token)
	})

	t := tracker.New(tracker.Config{
		Session:      sess,
		Guest:        guestStore,
		Remote:       remoteStore,
		Auth:         authClient,
		SaveSession:  saveSession,
		ClearSession: credential.ClearSession,
	})

	refresher := remote.NewSessionRefresher(
		authClient,
		func() (string, error) { return credential.Get(credential.KeyAccessToken) },
		func() (string, error) { return credential.Get(credential.KeyRefreshToken) },
		saveSession,
	)

	hasSession := sess.IsGuest()
	if !hasSession {
		token, err := credential.Get(credential.KeyAccessToken)
		hasSession = err == nil && token != ""
	}

	program := tea.NewProgram(
		app.New(t, refresher, cfg.Display.WindowDays, hasSession),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}

	return nil
}

// storedAccessToken supplies the bearer token for data requests. An empty
// return falls back to the anon key, which the server rejects for
// row-level access; the client surfaces that as an auth error.
func storedAccessToken() string {
	token, err := credential.Get(credential.KeyAccessToken)
	if err != nil {
		return ""
	}
	return token
}

// saveSession persists both tokens of a freshly issued session.
func saveSession(s *remote.Session) error {
	if err := credential.Set(credential.KeyAccessToken, s.AccessToken); err != nil {
		return err
	}
	return credential.Set(credential.KeyRefreshToken, s.RefreshToken)
}
