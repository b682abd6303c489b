package main

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/herbal/internal/capture"
	"github.com/abelbrown/herbal/internal/config"
	"github.com/abelbrown/herbal/internal/identity"
	"github.com/abelbrown/herbal/internal/logging"
	"github.com/abelbrown/herbal/internal/otel"
	"github.com/abelbrown/herbal/internal/ui"
)

func runTUI(cmd *cobra.Command, opts *globalOptions) error {
	if err := logging.Init(config.Dir()); err != nil {
		return err
	}
	defer logging.Close()

	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := e.resolveUser()
	if err != nil {
		if errors.Is(err, identity.ErrNoUser) {
			return fmt.Errorf("%w (or pass --user)", err)
		}
		return err
	}

	ctx := cmd.Context()
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	e.events.SetRingBuffer(ring)
	e.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindStartup, Comp: "main", User: user, Msg: version})

	sess := e.newSession(ctx, user)
	logging.Info("session started", "user", user, "plants", len(sess.Plants()))

	rec := capture.NewExecRecognizer(e.cfg.Capture.Command, e.cfg.Capture.Timeout)
	voice := capture.NewController(rec, e.events)

	kv := e.kv
	app := ui.NewApp(sess, ui.Options{
		Voice: voice,
		Copy:  clipboard.WriteAll,
		Logout: func() tea.Cmd {
			return func() tea.Msg {
				return ui.LoggedOut{Err: identity.Logout(kv)}
			}
		},
		Log:  e.events,
		Ring: ring,
		Ctx:  ctx,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	voice.Stop()
	e.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindShutdown, Comp: "main", User: user})
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run ui: %w", err)
	}

	if a, ok := final.(ui.App); ok && a.DidLogout() {
		logging.Info("user logged out", "user", user)
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out. Run `herbal login` to sign in again.")
	}
	return nil
}
