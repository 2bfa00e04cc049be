package cli

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/friendskids/friendskids/internal/auth"
	"github.com/friendskids/friendskids/internal/config"
	"github.com/friendskids/friendskids/internal/i18n"
	"github.com/friendskids/friendskids/internal/reminder"
	"github.com/friendskids/friendskids/internal/server"
	"github.com/spf13/cobra"
)

func (a *App) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdServe,
		Short: config.CmdDescServe,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd)
		},
	}
}

// serve runs the API until the command context is cancelled. The reminder
// worker shares the context and is stopped with the server.
func (a *App) serve(cmd *cobra.Command) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	s := a.settings

	if s.Auth.JWTSecret == "" {
		return errors.New(config.ErrJWTSecretEmpty)
	}
	interval, err := s.ReminderInterval()
	if err != nil {
		return err
	}

	tr, err := i18n.New(s.Server.DefaultLanguage)
	if err != nil {
		return err
	}

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := server.New(server.Options{
		Addr:            s.Server.Addr,
		Store:           st,
		Verifier:        auth.NewJWTService(s.Auth.JWTSecret, s.Auth.Issuer, s.Auth.Audience),
		Translator:      tr,
		Clock:           a.Clock,
		DashboardSize:   s.Server.DashboardSize,
		ReminderTrigger: s.Calendar.ReminderTrigger,
	})

	var wg sync.WaitGroup
	if s.Reminders.Enabled {
		w := &reminder.Worker{
			Source:   st,
			Notifier: reminder.LogNotifier{},
			Clock:    a.Clock,
			Interval: interval,
			LeadDays: s.Reminders.LeadDays,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(ctx)
		}()
	}

	err = srv.Start(ctx)
	cancel()
	wg.Wait()
	if err != nil {
		return err
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompCLI)
	return nil
}
