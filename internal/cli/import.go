package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/friendskids/friendskids/internal/config"
	"github.com/friendskids/friendskids/internal/engine"
	"github.com/friendskids/friendskids/internal/models"
	"github.com/friendskids/friendskids/internal/secrets"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type importFlags struct {
	user    string
	friend  string
	url     string
	webUser string
	dryRun  bool
}

func (a *App) importCommand() *cobra.Command {
	var f importFlags
	cmd := &cobra.Command{
		Use:   config.UseImport,
		Short: config.CmdDescImport,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return a.importVCards(cmd, path, f)
		},
	}
	cmd.Flags().StringVar(&f.user, config.FlagUser, "", config.FlagDescUser)
	cmd.Flags().StringVar(&f.friend, config.FlagFriend, "", config.FlagDescFriend)
	cmd.Flags().StringVar(&f.url, config.FlagURL, "", config.FlagDescURL)
	cmd.Flags().StringVar(&f.webUser, config.FlagWebUser, "", config.FlagDescWebUser)
	cmd.Flags().BoolVar(&f.dryRun, config.FlagDryRun, false, config.FlagDescDryRun)
	return cmd
}

// importVCards parses the source and creates one kid per contact with a full
// birthday. Nothing is written when the friend does not belong to the user.
func (a *App) importVCards(cmd *cobra.Command, path string, f importFlags) error {
	if (path == "") == (f.url == "") {
		return errors.New(config.ErrImportSource)
	}

	src := engine.Source{Path: path, URL: f.url, User: f.webUser}
	if f.url != "" && f.webUser != "" {
		pass, err := secrets.Get(secrets.WebPasswordName(f.webUser))
		if err != nil {
			return err
		}
		src.Pass = pass
	}

	var userID, friendID uuid.UUID
	if !f.dryRun {
		var err error
		if userID, err = uuid.Parse(f.user); err != nil {
			return fmt.Errorf("%s: %w", config.ErrUserIDInvalid, err)
		}
		if friendID, err = uuid.Parse(f.friend); err != nil {
			return fmt.Errorf("%s: %w", config.ErrFriendIDInvalid, err)
		}
	}

	ctx := cmd.Context()
	rc, err := engine.OpenSource(ctx, a.Fetcher, src)
	if err != nil {
		return err
	}
	defer rc.Close()

	contacts, stats, err := engine.ParseVCards(ctx, rc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, c := range contacts {
		fmt.Fprintf(out, config.MsgImportRow, c.Name, c.Birthdate)
	}
	fmt.Fprintf(out, config.MsgImportSummary, stats.Processed, stats.WithBday, stats.NoYear, stats.Malformed)

	if f.dryRun {
		fmt.Fprint(out, config.MsgImportDryRun)
		return nil
	}

	ctx, err = a.userContext(ctx, userID)
	if err != nil {
		return err
	}
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.GetFriend(ctx, userID, friendID); err != nil {
		return err
	}

	created := 0
	for _, c := range contacts {
		req := models.KidCreateRequest{Name: c.Name, Birthdate: c.Birthdate}
		if err := req.Validate(); err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompCLI,
				config.LogKeyName, c.Name,
				config.LogKeyError, err,
			)
			continue
		}
		if _, err := st.CreateKid(ctx, models.NewKid(friendID, req)); err != nil {
			return err
		}
		created++
	}

	slog.Info(config.MsgImportDone,
		config.LogKeyComponent, config.CompCLI,
		config.LogKeyFriend, friendID.String(),
		config.LogKeyCount, created,
		slog.Group(config.LogKeyStats,
			slog.Int("processed", stats.Processed),
			slog.Int("with_bday", stats.WithBday),
			slog.Int("no_year", stats.NoYear),
			slog.Int("malformed", stats.Malformed),
		),
	)
	return nil
}
