package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/domain"
	"github.com/mrz1836/astromedia/internal/errors"
	"github.com/mrz1836/astromedia/internal/store"
	"github.com/mrz1836/astromedia/internal/tui"
)

// AddAssetsCommand adds the assets command group to the root command.
func AddAssetsCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage generated media assets",
		Long: `List, add, and delete the media assets kept in the asset library.

Examples:
  astro assets list
  astro assets add --type image --url https://cdn.example.com/a.png --prompt "sunrise"
  astro assets delete asset-123`,
	}

	cmd.AddCommand(newAssetsListCmd(flags), newAssetsAddCmd(flags), newAssetsDeleteCmd(flags))
	root.AddCommand(cmd)
}

// withRepository loads configuration, opens the store, and runs fn
// against it.
func withRepository(ctx context.Context, flags *GlobalFlags, fn func(*store.Repository) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()
	cfg, err := loadConfig(ctx, flags, nil)
	if err != nil {
		return err
	}
	repo, st, err := openRepository(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("failed to close store")
		}
	}()
	return fn(repo)
}

func newAssetsListCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List media assets, newest first",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepository(cmd.Context(), flags, func(repo *store.Repository) error {
				assets, err := repo.Assets(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list assets: %w", err)
				}
				return outputAssets(cmd.OutOrStdout(), flags.Output, assets)
			})
		},
	}
}

func outputAssets(w io.Writer, output string, assets []domain.MediaAsset) error {
	if output == OutputJSON {
		return encodeJSON(w, assets)
	}
	if len(assets) == 0 {
		_, _ = fmt.Fprintln(w, "No assets. Add one with 'astro assets add'.")
		return nil
	}

	tui.CheckNoColor()
	rows := make([][]string, 0, len(assets))
	for _, a := range assets {
		rows = append(rows, []string{a.ID, string(a.Type), truncate(a.Prompt, 40), a.URL, tui.RelativeTime(a.CreatedAt)})
	}
	_, _ = fmt.Fprintln(w, tui.RenderTable([]string{"ID", "Type", "Prompt", "URL", "Created"}, rows, nil))
	return nil
}

// assetAddOptions holds the flags of assets add.
type assetAddOptions struct {
	mediaType string
	url       string
	prompt    string
	campaign  string
}

func newAssetsAddCmd(flags *GlobalFlags) *cobra.Command {
	opts := &assetAddOptions{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a media asset to the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asset, err := opts.asset()
			if err != nil {
				return err
			}
			return withRepository(cmd.Context(), flags, func(repo *store.Repository) error {
				if err := repo.SaveAsset(cmd.Context(), asset); err != nil {
					return fmt.Errorf("failed to save asset: %w", err)
				}
				if flags.Output == OutputJSON {
					return encodeJSON(cmd.OutOrStdout(), asset)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved asset %s\n", asset.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&opts.mediaType, "type", string(constants.MediaTypeImage), "asset type (image|video)")
	cmd.Flags().StringVar(&opts.url, "url", "", "asset location")
	cmd.Flags().StringVar(&opts.prompt, "prompt", "", "prompt the asset was generated from")
	cmd.Flags().StringVar(&opts.campaign, "campaign", "", "campaign the asset belongs to")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func (o *assetAddOptions) asset() (domain.MediaAsset, error) {
	mediaType := constants.MediaType(strings.ToLower(o.mediaType))
	if !mediaType.IsValid() {
		return domain.MediaAsset{}, fmt.Errorf("%w: --type must be image or video", errors.ErrInvalidArgument)
	}
	if strings.TrimSpace(o.url) == "" {
		return domain.MediaAsset{}, fmt.Errorf("asset url: %w", errors.ErrEmptyValue)
	}
	return domain.MediaAsset{
		ID:         uuid.NewString(),
		Type:       mediaType,
		URL:        o.url,
		Prompt:     o.prompt,
		CampaignID: o.campaign,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

func newAssetsDeleteCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete a media asset",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd.Context(), flags, func(repo *store.Repository) error {
				if err := repo.DeleteAsset(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to delete asset: %w", err)
				}
				if flags.Output != OutputJSON {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted asset %s\n", args[0])
				}
				return nil
			})
		},
	}
}

// truncate shortens s to n terminal cells, ending with an ellipsis when cut.
func truncate(s string, n int) string {
	return runewidth.Truncate(s, n, "…")
}
