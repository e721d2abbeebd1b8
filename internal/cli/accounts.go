package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/domain"
	"github.com/mrz1836/astromedia/internal/logging"
	"github.com/mrz1836/astromedia/internal/store"
	"github.com/mrz1836/astromedia/internal/tui"
)

// AddAccountsCommand adds the accounts command group to the root command.
func AddAccountsCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Connect and disconnect social platforms",
		Long: `Show which platforms are connected and manage their access tokens.
Connecting runs a simulated OAuth exchange and stores the issued token;
tokens are only ever displayed masked.

Examples:
  astro accounts
  astro accounts connect twitter
  astro accounts disconnect twitter`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepository(cmd.Context(), flags, func(repo *store.Repository) error {
				accounts, err := repo.AccountList(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list accounts: %w", err)
				}
				return outputAccounts(cmd.OutOrStdout(), flags.Output, accounts)
			})
		},
	}

	cmd.AddCommand(newAccountsConnectCmd(flags), newAccountsDisconnectCmd(flags))
	root.AddCommand(cmd)
}

func newAccountsConnectCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "connect <platform>",
		Short: "Connect a platform and store its token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform := constants.Platform(strings.ToLower(args[0]))
			return withRepository(cmd.Context(), flags, func(repo *store.Repository) error {
				token, err := repo.ConnectAccount(cmd.Context(), platform)
				if err != nil {
					return fmt.Errorf("failed to connect %s: %w", platform, err)
				}
				logger := GetLogger()
				logger.Info().Str("platform", string(platform)).Msg("account connected")
				return outputAccounts(cmd.OutOrStdout(), flags.Output, []domain.Account{{
					Platform:  platform,
					Connected: true,
					Token:     logging.MaskSecret(token),
				}})
			})
		},
	}
}

func newAccountsDisconnectCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect <platform>",
		Short: "Disconnect a platform and drop its token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform := constants.Platform(strings.ToLower(args[0]))
			return withRepository(cmd.Context(), flags, func(repo *store.Repository) error {
				if err := repo.DisconnectAccount(cmd.Context(), platform); err != nil {
					return fmt.Errorf("failed to disconnect %s: %w", platform, err)
				}
				logger := GetLogger()
				logger.Info().Str("platform", string(platform)).Msg("account disconnected")
				return outputAccounts(cmd.OutOrStdout(), flags.Output, []domain.Account{{Platform: platform}})
			})
		},
	}
}

func outputAccounts(w io.Writer, output string, accounts []domain.Account) error {
	if output == OutputJSON {
		return encodeJSON(w, accounts)
	}

	tui.CheckNoColor()
	title := cases.Title(language.English)
	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		state := "Disconnected"
		if a.Connected {
			state = "Connected"
		}
		token := a.Token
		if token == "" {
			token = "-"
		}
		rows = append(rows, []string{title.String(string(a.Platform)), state, token})
	}
	_, _ = fmt.Fprintln(w, tui.RenderTable([]string{"Platform", "Status", "Token"}, rows, nil))
	return nil
}
