package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/friendskids/friendskids/internal/config"
	"github.com/friendskids/friendskids/internal/secrets"
	"github.com/spf13/cobra"
)

func (a *App) keyringCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.CmdKeyring,
		Short: config.CmdDescKeyring,
	}

	set := &cobra.Command{
		Use:   config.UseKeySet,
		Short: config.CmdDescKeySet,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := checkSecretName(name); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), config.MsgEnterSecret, name)
			value, err := readLine(cmd)
			if err != nil {
				return err
			}
			if err := secrets.Set(name, value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), config.MsgSecretStoredOut, name)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   config.UseKeyDelete,
		Short: config.CmdDescKeyDel,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := checkSecretName(name); err != nil {
				return err
			}
			if err := secrets.Delete(name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), config.MsgSecretDelOut, name)
			return nil
		},
	}

	cmd.AddCommand(set, del)
	return cmd
}

// checkSecretName accepts the known credentials and vCard URL passwords.
func checkSecretName(name string) error {
	if secrets.Known(name) {
		return nil
	}
	if user := strings.TrimPrefix(name, config.SecretWebPrefix); user != name && user != "" {
		return nil
	}
	return fmt.Errorf("%s: %q (%s, %s<user>)", config.ErrSecretUnknown, name,
		strings.Join(secrets.Names, ", "), config.SecretWebPrefix)
}

func readLine(cmd *cobra.Command) (string, error) {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("%s: %w", config.ErrSecretRead, err)
		}
		return "", errors.New(config.ErrSecretEmpty)
	}
	return strings.TrimSpace(scanner.Text()), nil
}
