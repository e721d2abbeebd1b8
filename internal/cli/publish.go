package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/domain"
	"github.com/mrz1836/astromedia/internal/errors"
	"github.com/mrz1836/astromedia/internal/store"
	"github.com/mrz1836/astromedia/internal/tui"
)

// publishOptions holds the flags of the publish command.
type publishOptions struct {
	platform string
	caption  string
	mediaID  string
	wait     bool
}

// AddPublishCommand adds the publish and posts commands to the root command.
func AddPublishCommand(root *cobra.Command, flags *GlobalFlags) {
	opts := &publishOptions{}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Hand a social post to the automation backend",
		Long: `Create a scheduled post and start its publish job. The job reports back
after the configured delay and marks the post published or failed.

Examples:
  astro publish --platform twitter --caption "Launch day!"
  astro publish --platform linkedin --caption "Hiring" --media 6f1c...
  astro publish --platform instagram --caption "Teaser" --wait=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPublish(cmd.Context(), cmd.OutOrStdout(), flags, opts)
		},
	}
	cmd.Flags().StringVar(&opts.platform, "platform", "", "target platform (twitter|linkedin|instagram|facebook)")
	cmd.Flags().StringVar(&opts.caption, "caption", "", "post caption")
	cmd.Flags().StringVar(&opts.mediaID, "media", "", "id of the media asset to attach")
	cmd.Flags().BoolVar(&opts.wait, "wait", true, "wait for the job outcome before exiting")
	_ = cmd.MarkFlagRequired("platform")
	_ = cmd.MarkFlagRequired("caption")
	root.AddCommand(cmd)

	root.AddCommand(&cobra.Command{
		Use:   "posts",
		Short: "List social posts and their delivery status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepository(cmd.Context(), flags, func(repo *store.Repository) error {
				posts, err := repo.Posts(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list posts: %w", err)
				}
				return outputPosts(cmd.OutOrStdout(), flags.Output, posts)
			})
		},
	})
}

// runPublish starts a publish job. Without --wait the process exits before
// the job reports back, leaving the post scheduled.
func runPublish(ctx context.Context, w io.Writer, flags *GlobalFlags, opts *publishOptions) error {
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

	publisher := newPublisher(cfg, repo, logger)
	defer func() {
		_ = publisher.Close()
	}()

	jobID, err := publisher.Publish(ctx, domain.PostRequest{
		MediaID:  opts.mediaID,
		Platform: constants.Platform(strings.ToLower(opts.platform)),
		Caption:  opts.caption,
	})
	if err != nil {
		return err
	}
	if !opts.wait {
		if flags.Output == OutputJSON {
			return encodeJSON(w, map[string]string{"job_id": jobID})
		}
		_, _ = fmt.Fprintf(w, "Queued job %s\n", jobID)
		return nil
	}

	if flags.Output != OutputJSON {
		_, _ = fmt.Fprintf(w, "Queued job %s, waiting for the automation backend...\n", jobID)
	}
	publisher.Wait()

	posts, err := repo.Posts(ctx)
	if err != nil {
		return fmt.Errorf("failed to read post status: %w", err)
	}
	for _, post := range posts {
		if post.JobID != jobID {
			continue
		}
		if flags.Output == OutputJSON {
			return encodeJSON(w, post)
		}
		tui.CheckNoColor()
		_, _ = fmt.Fprintf(w, "Post %s on %s: %s\n", post.ID, post.Platform,
			tui.Colorize(post.Status.String(), tui.PostStatusColor(post.Status)))
		return nil
	}
	return fmt.Errorf("post for job %s: %w", jobID, errors.ErrRecordNotFound)
}

func outputPosts(w io.Writer, output string, posts []domain.SocialPost) error {
	if output == OutputJSON {
		return encodeJSON(w, posts)
	}
	if len(posts) == 0 {
		_, _ = fmt.Fprintln(w, "No posts. Run 'astro publish' to create one.")
		return nil
	}

	tui.CheckNoColor()
	rows := make([][]string, 0, len(posts))
	for _, p := range posts {
		published := "-"
		if p.PublishedAt != nil {
			published = tui.RelativeTime(*p.PublishedAt)
		}
		rows = append(rows, []string{
			p.ID,
			string(p.Platform),
			truncate(p.Caption, 40),
			tui.Colorize(p.Status.String(), tui.PostStatusColor(p.Status)),
			p.JobID,
			published,
		})
	}
	_, _ = fmt.Fprintln(w, tui.RenderTable([]string{"ID", "Platform", "Caption", "Status", "Job", "Published"}, rows, nil))
	return nil
}
