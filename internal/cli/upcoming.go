package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/friendskids/friendskids/internal/auth"
	"github.com/friendskids/friendskids/internal/config"
	"github.com/friendskids/friendskids/internal/engine"
	"github.com/friendskids/friendskids/internal/i18n"
	"github.com/friendskids/friendskids/internal/store"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type upcomingFlags struct {
	user   string
	search string
	filter string
	limit  int
}

func (a *App) upcomingCommand() *cobra.Command {
	var f upcomingFlags
	cmd := &cobra.Command{
		Use:   config.CmdUpcoming,
		Short: config.CmdDescUpcoming,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.upcoming(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.user, config.FlagUser, "", config.FlagDescUser)
	cmd.Flags().StringVar(&f.search, config.FlagSearch, "", config.FlagDescSearch)
	cmd.Flags().StringVar(&f.filter, config.FlagFilter, string(engine.FilterAll), config.FlagDescFilter)
	cmd.Flags().IntVar(&f.limit, config.FlagLimit, config.DefaultDashboardSize, config.FlagDescLimit)
	_ = cmd.MarkFlagRequired(config.FlagUser)
	return cmd
}

func (a *App) upcoming(cmd *cobra.Command, f upcomingFlags) error {
	userID, err := uuid.Parse(f.user)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrUserIDInvalid, err)
	}

	ctx, err := a.userContext(cmd.Context(), userID)
	if err != nil {
		return err
	}
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.ListKidRecords(ctx, userID)
	if err != nil {
		return err
	}

	tr, err := i18n.New(a.settings.Server.DefaultLanguage)
	if err != nil {
		return err
	}
	l := tr.Localizer()

	kids := engine.Upcoming(records, a.Clock.Now(), engine.Query{
		Search: f.search,
		Filter: engine.ParseFilter(f.filter),
		Limit:  f.limit,
	})

	out := cmd.OutOrStdout()
	if len(kids) == 0 {
		fmt.Fprintln(out, l.Msg(config.TKeyEmptyUpcoming))
		return nil
	}

	fmt.Fprintf(out, config.MsgUpcomingHeader, "KID", "FRIEND", "DATE", "DAYS", "AGE", "")
	for _, k := range kids {
		label := l.Countdown(k.Projection.DaysUntil)
		if k.Projection.IsMilestone {
			label += " · " + l.Msg(config.TKeyMilestone)
		}
		fmt.Fprintf(out, config.MsgUpcomingRow,
			k.Name,
			k.FriendName,
			k.Projection.NextDate,
			k.Projection.DaysUntil,
			k.Projection.AgeAtNext,
			label,
		)
	}
	return nil
}

// userContext attaches a short-lived token for userID when a JWT secret is
// configured, so the REST backend applies the user's row-level security.
func (a *App) userContext(ctx context.Context, userID uuid.UUID) (context.Context, error) {
	s := a.settings.Auth
	if s.JWTSecret == "" {
		if a.settings.Backend.Mode == config.BackendModeREST {
			return nil, errors.New(config.ErrJWTSecretEmpty)
		}
		return ctx, nil
	}
	token, err := auth.NewJWTService(s.JWTSecret, s.Issuer, s.Audience).
		GenerateToken(userID, "", config.CLITokenTTL)
	if err != nil {
		return nil, err
	}
	return store.WithAccessToken(ctx, token), nil
}
