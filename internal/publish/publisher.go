// Package publish simulates the automation backend that posts content to
// social platforms. A publish call records a scheduled post, optionally
// notifies a webhook, and reports the outcome after a fixed delay.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/astromedia/internal/clock"
	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/domain"
	astroerrors "github.com/mrz1836/astromedia/internal/errors"
)

const jobIDLength = 9

// PostStore persists publish jobs. store.Repository implements it.
type PostStore interface {
	SavePost(ctx context.Context, post domain.SocialPost) error
	UpdatePostStatus(ctx context.Context, id string, status constants.PostStatus) (*domain.SocialPost, error)
}

// Config controls the simulated backend.
type Config struct {
	// WebhookURL, when set, receives every publish request as JSON.
	WebhookURL string

	// Delay is how long a job runs before it reports back.
	Delay time.Duration

	// SuccessRate is the probability in [0,1] that a job is published.
	SuccessRate float64

	// Timeout bounds the webhook call.
	Timeout time.Duration
}

// DefaultConfig returns the backend defaults.
func DefaultConfig() Config {
	return Config{
		Delay:       constants.DefaultPublishDelay,
		SuccessRate: constants.DefaultPublishSuccessRate,
		Timeout:     constants.DefaultPublishWebhookTimeout,
	}
}

// Publisher hands posts to the automation backend.
type Publisher struct {
	posts  PostStore
	cfg    Config
	client *http.Client
	clock  clock.Clock
	logger zerolog.Logger

	randMu sync.Mutex
	rand   *rand.Rand

	// mu orders job registration against Close so wg.Add never races wg.Wait
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
	done   chan struct{}
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithClock sets the clock used for the job delay and publish timestamps.
func WithClock(c clock.Clock) Option {
	return func(p *Publisher) {
		p.clock = c
	}
}

// WithRand sets the random source deciding job outcomes.
func WithRand(r *rand.Rand) Option {
	return func(p *Publisher) {
		p.rand = r
	}
}

// WithHTTPClient sets the client used for webhook calls.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Publisher) {
		p.client = c
	}
}

// New creates a Publisher that records jobs in posts.
func New(posts PostStore, cfg Config, logger zerolog.Logger, opts ...Option) *Publisher {
	p := &Publisher{
		posts:  posts,
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		clock:  clock.RealClock{},
		logger: logger.With().Str("component", "publisher").Logger(),
		rand:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // outcome simulation, not security
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish creates a scheduled post for req and starts its job. The returned
// job id identifies the post until the job reports back.
//
// Returns an error if:
//   - the platform is not supported (ErrInvalidPlatform)
//   - the caption is empty (ErrEmptyValue)
//   - the publisher is closed or the webhook rejects the request (ErrPublishFailed)
//   - the post cannot be saved
func (p *Publisher) Publish(ctx context.Context, req domain.PostRequest) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if !req.Platform.IsValid() {
		return "", fmt.Errorf("%w: %q", astroerrors.ErrInvalidPlatform, req.Platform)
	}
	if strings.TrimSpace(req.Caption) == "" {
		return "", fmt.Errorf("caption %w", astroerrors.ErrEmptyValue)
	}

	if !p.track() {
		return "", fmt.Errorf("%w: publisher closed", astroerrors.ErrPublishFailed)
	}
	started := false
	defer func() {
		if !started {
			p.wg.Done()
		}
	}()

	if err := p.notifyWebhook(ctx, req); err != nil {
		return "", err
	}

	post := domain.SocialPost{
		ID:           uuid.NewString(),
		MediaID:      req.MediaID,
		Platform:     req.Platform,
		Caption:      req.Caption,
		Status:       constants.PostStatusScheduled,
		ScheduledFor: req.ScheduledFor,
		JobID:        newJobID(),
	}
	if err := p.posts.SavePost(ctx, post); err != nil {
		return "", fmt.Errorf("failed to save post: %w", err)
	}

	p.logger.Info().
		Str("job_id", post.JobID).
		Str("platform", string(post.Platform)).
		Msg("publish job scheduled")

	started = true
	go p.complete(post)

	return post.JobID, nil
}

// track registers a job with the wait group unless the publisher is closed.
func (p *Publisher) track() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.wg.Add(1)
	return true
}

// Wait blocks until every started job has reported back or been abandoned.
func (p *Publisher) Wait() {
	p.wg.Wait()
}

// Close stops accepting jobs and abandons the ones still waiting. Abandoned
// posts stay scheduled.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.done)
	}
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

func (p *Publisher) complete(post domain.SocialPost) {
	defer p.wg.Done()

	select {
	case <-p.clock.After(p.cfg.Delay):
	case <-p.done:
		p.logger.Warn().Str("job_id", post.JobID).Msg("publish job abandoned")
		return
	}

	status := constants.PostStatusFailed
	if p.succeeded() {
		status = constants.PostStatusPublished
	}

	// the request context is gone by now; the job reports back on its own
	if _, err := p.posts.UpdatePostStatus(context.Background(), post.ID, status); err != nil {
		p.logger.Error().Err(err).Str("job_id", post.JobID).Msg("failed to record publish outcome")
		return
	}

	p.logger.Info().
		Str("job_id", post.JobID).
		Str("status", string(status)).
		Msg("publish job completed")
}

func (p *Publisher) succeeded() bool {
	p.randMu.Lock()
	defer p.randMu.Unlock()
	return p.rand.Float64() < p.cfg.SuccessRate
}

func (p *Publisher) notifyWebhook(ctx context.Context, req domain.PostRequest) error {
	if p.cfg.WebhookURL == "" {
		return nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode publish request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %s", astroerrors.ErrPublishFailed, err.Error())
	}
	_ = resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: webhook returned status %d", astroerrors.ErrPublishFailed, resp.StatusCode)
	}
	return nil
}

func newJobID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return constants.JobIDPrefix + id[:jobIDLength]
}
