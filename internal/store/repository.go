package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mrz1836/astromedia/internal/clock"
	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/domain"
	astroerrors "github.com/mrz1836/astromedia/internal/errors"
	"github.com/mrz1836/astromedia/internal/logging"
)

// Repository is the typed view of the store used by the console: the asset
// library, publish jobs, campaigns, connected accounts, and OAuth tokens.
type Repository struct {
	store Store
	clock clock.Clock
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithRepositoryClock sets the clock used to stamp publish and update times.
func WithRepositoryClock(c clock.Clock) RepositoryOption {
	return func(r *Repository) {
		r.clock = c
	}
}

// NewRepository wraps store.
func NewRepository(store Store, opts ...RepositoryOption) *Repository {
	r := &Repository{store: store, clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultCampaigns are shown until the first campaign is saved.
func DefaultCampaigns(now time.Time) []domain.Campaign {
	return []domain.Campaign{
		{
			ID:          "c1",
			Name:        "Q4 Brand Awareness",
			Status:      constants.CampaignStatusActive,
			Platform:    "Multi",
			Performance: domain.CampaignPerformance{Reach: 12000, Engagement: 450, Conversion: 22},
			LastUpdated: now,
		},
		{
			ID:          "c2",
			Name:        "Product Launch 2025",
			Status:      constants.CampaignStatusDraft,
			Platform:    "Twitter",
			LastUpdated: now,
		},
	}
}

// Assets returns the asset library, newest first.
func (r *Repository) Assets(ctx context.Context) ([]domain.MediaAsset, error) {
	return list[domain.MediaAsset](ctx, r.store, constants.CollectionAssets)
}

// SaveAsset adds or replaces an asset.
func (r *Repository) SaveAsset(ctx context.Context, asset domain.MediaAsset) error {
	return save(ctx, r.store, constants.CollectionAssets, asset.ID, asset)
}

// DeleteAsset removes an asset. Deleting a missing asset is not an error.
func (r *Repository) DeleteAsset(ctx context.Context, id string) error {
	return r.store.Delete(ctx, constants.CollectionAssets, id)
}

// Posts returns every publish job, newest first.
func (r *Repository) Posts(ctx context.Context) ([]domain.SocialPost, error) {
	return list[domain.SocialPost](ctx, r.store, constants.CollectionPosts)
}

// SavePost adds or replaces a post.
func (r *Repository) SavePost(ctx context.Context, post domain.SocialPost) error {
	return save(ctx, r.store, constants.CollectionPosts, post.ID, post)
}

// UpdatePostStatus changes the status of a post and stamps PublishedAt
// when the post is published.
//
// Returns an error if:
//   - no post has the given id (ErrRecordNotFound)
//   - the store cannot be read or written
func (r *Repository) UpdatePostStatus(ctx context.Context, id string, status constants.PostStatus) (*domain.SocialPost, error) {
	posts, err := r.Posts(ctx)
	if err != nil {
		return nil, err
	}

	for i := range posts {
		if posts[i].ID != id {
			continue
		}
		post := posts[i]
		post.Status = status
		if status == constants.PostStatusPublished {
			now := r.clock.Now().UTC()
			post.PublishedAt = &now
		}
		if err := r.SavePost(ctx, post); err != nil {
			return nil, err
		}
		return &post, nil
	}
	return nil, fmt.Errorf("%w: post %s", astroerrors.ErrRecordNotFound, id)
}

// Campaigns returns the saved campaigns, or DefaultCampaigns when none have
// been saved yet.
func (r *Repository) Campaigns(ctx context.Context) ([]domain.Campaign, error) {
	campaigns, err := list[domain.Campaign](ctx, r.store, constants.CollectionCampaigns)
	if err != nil {
		return nil, err
	}
	if len(campaigns) == 0 {
		return DefaultCampaigns(r.clock.Now().UTC()), nil
	}
	return campaigns, nil
}

// SaveCampaign adds or replaces a campaign. The first save persists the
// default campaigns underneath the new one.
func (r *Repository) SaveCampaign(ctx context.Context, campaign domain.Campaign) error {
	existing, err := list[domain.Campaign](ctx, r.store, constants.CollectionCampaigns)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		defaults := DefaultCampaigns(r.clock.Now().UTC())
		// saved oldest first so c1 ends up on top of c2
		for i := len(defaults) - 1; i >= 0; i-- {
			if defaults[i].ID == campaign.ID {
				continue
			}
			if err := save(ctx, r.store, constants.CollectionCampaigns, defaults[i].ID, defaults[i]); err != nil {
				return err
			}
		}
	}
	if campaign.LastUpdated.IsZero() {
		campaign.LastUpdated = r.clock.Now().UTC()
	}
	return save(ctx, r.store, constants.CollectionCampaigns, campaign.ID, campaign)
}

// CreateCampaign launches a new campaign with zeroed performance. It is
// active right away, or scheduled when scheduledAt is set.
//
// Returns an error if:
//   - name is blank (ErrEmptyValue)
//   - the store cannot be written
func (r *Repository) CreateCampaign(ctx context.Context, name string, scheduledAt *time.Time) (domain.Campaign, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Campaign{}, fmt.Errorf("campaign name %w", astroerrors.ErrEmptyValue)
	}

	campaign := domain.Campaign{
		ID:          uuid.NewString(),
		Name:        name,
		Status:      constants.CampaignStatusActive,
		Platform:    constants.CampaignPlatformOrchestrated,
		LastUpdated: r.clock.Now().UTC(),
	}
	if scheduledAt != nil {
		at := scheduledAt.UTC()
		campaign.Status = constants.CampaignStatusScheduled
		campaign.ScheduledAt = &at
	}

	if err := r.SaveCampaign(ctx, campaign); err != nil {
		return domain.Campaign{}, err
	}
	return campaign, nil
}

// Accounts reports which platforms are connected. Every platform is present
// in the result and defaults to false.
func (r *Repository) Accounts(ctx context.Context) (map[constants.Platform]bool, error) {
	records, err := r.store.Get(ctx, constants.CollectionAccounts)
	if err != nil {
		return nil, err
	}

	accounts := make(map[constants.Platform]bool, len(constants.Platforms()))
	for _, p := range constants.Platforms() {
		accounts[p] = false
	}
	for _, rec := range records {
		var connected bool
		if err := json.Unmarshal(rec.Data, &connected); err != nil {
			return nil, fmt.Errorf("%w: account %s: %s", astroerrors.ErrStoreCorrupted, rec.ID, err.Error())
		}
		accounts[constants.Platform(rec.ID)] = connected
	}
	return accounts, nil
}

// SetAccountConnection records whether a platform is connected.
//
// Returns an error if:
//   - platform is not a supported platform (ErrInvalidPlatform)
//   - the store cannot be written
func (r *Repository) SetAccountConnection(ctx context.Context, platform constants.Platform, connected bool) error {
	if !platform.IsValid() {
		return fmt.Errorf("%w: %q", astroerrors.ErrInvalidPlatform, platform)
	}
	return save(ctx, r.store, constants.CollectionAccounts, string(platform), connected)
}

// ConnectAccount completes a simulated OAuth exchange: it issues a token,
// stores it, and marks the platform connected. The raw token is returned
// once; listings only show it masked.
func (r *Repository) ConnectAccount(ctx context.Context, platform constants.Platform) (string, error) {
	if !platform.IsValid() {
		return "", fmt.Errorf("%w: %q", astroerrors.ErrInvalidPlatform, platform)
	}
	token := constants.TokenPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := r.SaveToken(ctx, platform, token); err != nil {
		return "", err
	}
	if err := r.SetAccountConnection(ctx, platform, true); err != nil {
		return "", err
	}
	return token, nil
}

// DisconnectAccount marks the platform disconnected and drops its token.
func (r *Repository) DisconnectAccount(ctx context.Context, platform constants.Platform) error {
	if err := r.SetAccountConnection(ctx, platform, false); err != nil {
		return err
	}
	return r.ClearToken(ctx, platform)
}

// AccountList returns every platform in display order with its connection
// state and masked token.
func (r *Repository) AccountList(ctx context.Context) ([]domain.Account, error) {
	connected, err := r.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	tokens, err := r.Tokens(ctx)
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(connected))
	for _, p := range constants.Platforms() {
		accounts = append(accounts, domain.Account{
			Platform:  p,
			Connected: connected[p],
			Token:     logging.MaskSecret(tokens[p]),
		})
	}
	return accounts, nil
}

// SaveToken stores the OAuth token for a platform.
func (r *Repository) SaveToken(ctx context.Context, platform constants.Platform, token string) error {
	if !platform.IsValid() {
		return fmt.Errorf("%w: %q", astroerrors.ErrInvalidPlatform, platform)
	}
	if token == "" {
		return fmt.Errorf("token %w", astroerrors.ErrEmptyValue)
	}
	return save(ctx, r.store, constants.CollectionTokens, string(platform), token)
}

// Tokens returns the stored OAuth tokens keyed by platform.
func (r *Repository) Tokens(ctx context.Context) (map[constants.Platform]string, error) {
	records, err := r.store.Get(ctx, constants.CollectionTokens)
	if err != nil {
		return nil, err
	}

	tokens := make(map[constants.Platform]string, len(records))
	for _, rec := range records {
		var token string
		if err := json.Unmarshal(rec.Data, &token); err != nil {
			return nil, fmt.Errorf("%w: token %s: %s", astroerrors.ErrStoreCorrupted, rec.ID, err.Error())
		}
		tokens[constants.Platform(rec.ID)] = token
	}
	return tokens, nil
}

// ClearToken removes the OAuth token for a platform.
func (r *Repository) ClearToken(ctx context.Context, platform constants.Platform) error {
	return r.store.Delete(ctx, constants.CollectionTokens, string(platform))
}

func list[T any](ctx context.Context, s Store, collection string) ([]T, error) {
	records, err := s.Get(ctx, collection)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0, len(records))
	for _, rec := range records {
		var item T
		if err := json.Unmarshal(rec.Data, &item); err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %s", astroerrors.ErrStoreCorrupted, collection, rec.ID, err.Error())
		}
		items = append(items, item)
	}
	return items, nil
}

func save(ctx context.Context, s Store, collection, id string, item any) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}
	return s.Save(ctx, collection, Record{ID: id, Data: data})
}
