// Package pipeline drives one fetch → dedup → render → publish → commit pass
// over every active tenant. Tenants are processed by a bounded worker pool;
// a failure inside one tenant never cancels another's progress. Only the
// ledger and config store being unavailable abort a cycle, because without
// them at-most-once publishing cannot be guaranteed.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"brandpost/autoposter/internal/ledger"
	"brandpost/autoposter/internal/models"
	"brandpost/autoposter/internal/publish"
	"brandpost/autoposter/internal/render"
	"brandpost/autoposter/internal/resolve"
	"brandpost/autoposter/internal/store"
)

// Fetcher retrieves one feed's items in feed-native order.
type Fetcher interface {
	Fetch(ctx context.Context, feed models.Feed) ([]models.NewsItem, error)
}

// Resolver obtains binary resources ahead of rendering.
type Resolver interface {
	TenantResources(ctx context.Context, cfg *models.RenderConfig) (*resolve.TenantResources, error)
	Image(ctx context.Context, url string) (image.Image, error)
}

// Compositor renders one item into an encoded image.
type Compositor interface {
	Compose(item models.NewsItem, cfg *models.RenderConfig, res render.Resources) ([]byte, error)
}

// Runner orchestrates pipeline cycles.
type Runner struct {
	store      store.Store
	status     store.StatusRecorder
	fetcher    Fetcher
	resolver   Resolver
	compositor Compositor
	transport  publish.Transport
	ledger     ledger.Ledger

	WorkerCount  int
	publishDelay time.Duration

	processed  atomic.Int64
	duplicates atomic.Int64
	failed     atomic.Int64
	skipped    atomic.Int64

	cancelCycle context.CancelFunc

	mu       sync.Mutex
	abortErr error
}

// Options configures a Runner.
type Options struct {
	WorkerCount  int
	PublishDelay time.Duration
}

// NewRunner wires a Runner from its collaborators. status may be nil when
// feed health bookkeeping is not wanted (tests, dry runs).
func NewRunner(st store.Store, status store.StatusRecorder, fetcher Fetcher, resolver Resolver,
	compositor Compositor, transport publish.Transport, lg ledger.Ledger, opts Options) *Runner {
	if opts.WorkerCount <= 0 {
		opts.WorkerCount = 1
	}
	return &Runner{
		store:        st,
		status:       status,
		fetcher:      fetcher,
		resolver:     resolver,
		compositor:   compositor,
		transport:    transport,
		ledger:       lg,
		WorkerCount:  opts.WorkerCount,
		publishDelay: opts.PublishDelay,
	}
}

// RunCycle executes one full pipeline pass and returns once every tenant has
// been processed or the context is cancelled. A non-nil error means the cycle
// did not run to completion: cancellation, a config store failure, or the
// ledger becoming unavailable. It always returns the Runner to an idle state;
// cycles are meant to be triggered repeatedly from outside.
func (r *Runner) RunCycle(ctx context.Context) error {
	cycleCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	r.cancelCycle = cancel
	r.mu.Lock()
	r.abortErr = nil
	r.mu.Unlock()

	tenants, err := r.store.ListTenants(cycleCtx)
	if err != nil {
		return fmt.Errorf("failed to list tenants: %w", err)
	}

	log.Info().
		Int("tenants", len(tenants)).
		Int("workers", r.WorkerCount).
		Msg("Starting pipeline cycle")

	tenantQueue := make(chan models.Tenant)
	var wg sync.WaitGroup

	for i := 0; i < r.WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tenant := range tenantQueue {
				r.processTenant(cycleCtx, tenant)
			}
		}()
	}

tenantLoop:
	for _, tenant := range tenants {
		select {
		case tenantQueue <- tenant:
		case <-cycleCtx.Done():
			break tenantLoop
		}
	}
	close(tenantQueue)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	abortErr := r.abortErr
	r.mu.Unlock()
	if abortErr != nil {
		return fmt.Errorf("cycle aborted: %w", abortErr)
	}

	processed, duplicates, failed, skipped := r.Stats()
	log.Info().
		Int64("processed", processed).
		Int64("duplicates", duplicates).
		Int64("failed", failed).
		Int64("skipped", skipped).
		Msg("Pipeline cycle finished")
	return nil
}

// Stats returns counters accumulated since the Runner was created.
func (r *Runner) Stats() (processed, duplicates, failed, skipped int64) {
	return r.processed.Load(), r.duplicates.Load(), r.failed.Load(), r.skipped.Load()
}

// abortCycle records the fatal cause and cancels all in-flight work. The
// first cause wins; anything failing afterwards is a consequence of the
// cancellation, not the reason for it.
func (r *Runner) abortCycle(err error) {
	r.mu.Lock()
	if r.abortErr == nil {
		r.abortErr = err
	}
	r.mu.Unlock()
	r.cancelCycle()
}

// processTenant runs one tenant's feeds. Errors are contained here so sibling
// tenants keep processing; only a ledger failure escapes, by cancelling the
// whole cycle.
func (r *Runner) processTenant(ctx context.Context, tenant models.Tenant) {
	logger := log.With().Int64("tenant_id", tenant.ID).Str("tenant", tenant.Name).Logger()

	cfg, err := r.store.GetConfig(ctx, tenant.ID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load tenant config")
		r.failed.Add(1)
		return
	}

	if !cfg.Complete() {
		logger.Warn().Msg("Tenant config incomplete (missing logo or fonts), skipping")
		r.skipped.Add(1)
		return
	}

	// Logo and fonts are shared by every item this cycle; losing them fails
	// each item identically, so the tenant is aborted here.
	resources, err := r.resolver.TenantResources(ctx, cfg)
	if err != nil {
		logger.Error().Err(&ResourceError{Resource: "tenant resources", TenantWide: true, Err: err}).
			Msg("Aborting tenant cycle")
		r.failed.Add(1)
		return
	}

	feeds, err := r.store.ListFeeds(ctx, tenant.ID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list feeds")
		r.failed.Add(1)
		return
	}

	limiter := rate.NewLimiter(rate.Every(r.publishDelay), 1)
	if r.publishDelay <= 0 {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}

	for _, feed := range feeds {
		if ctx.Err() != nil {
			return
		}
		if err := r.processFeed(ctx, tenant, feed, cfg, resources, limiter); err != nil {
			var ledgerErr *LedgerError
			if errors.As(err, &ledgerErr) {
				logger.Error().Err(err).Msg("Ledger unavailable, aborting cycle")
				r.failed.Add(1)
				r.abortCycle(err)
				return
			}
			logger.Warn().Err(err).Str("feed", feed.URL).Msg("Feed skipped")
		}
	}
}

// processFeed fetches one feed and walks its items oldest-first. Per-item
// errors are logged and skipped; only ledger failures propagate.
func (r *Runner) processFeed(ctx context.Context, tenant models.Tenant, feed models.Feed,
	cfg *models.RenderConfig, resources *resolve.TenantResources, limiter *rate.Limiter) error {

	items, err := r.fetcher.Fetch(ctx, feed)
	if r.status != nil {
		r.status.RecordFeedResult(ctx, feed.ID, err)
	}
	if err != nil {
		r.failed.Add(1)
		return &FetchError{FeedURL: feed.URL, Err: err}
	}

	// Feeds list newest first; publish older pending items before newer ones.
	for i := len(items) - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			return nil
		}

		err := r.processItem(ctx, tenant, items[i], cfg, resources, limiter)
		if err == nil {
			continue
		}

		var ledgerErr *LedgerError
		if errors.As(err, &ledgerErr) {
			return err
		}

		r.failed.Add(1)
		log.Warn().Err(err).
			Int64("tenant_id", tenant.ID).
			Str("link", items[i].SourceLink).
			Msg("Item skipped, will retry next cycle")
	}
	return nil
}

// processItem performs dedup check, resource resolution, composition,
// publishing and the ledger commit for one item. The commit happens strictly
// after a successful publish: a crash in between leaves the item eligible
// for a retry, never silently dropped.
func (r *Runner) processItem(ctx context.Context, tenant models.Tenant, item models.NewsItem,
	cfg *models.RenderConfig, resources *resolve.TenantResources, limiter *rate.Limiter) error {

	seen, err := r.ledger.Contains(ctx, tenant.ID, item.SourceLink)
	if err != nil {
		return &LedgerError{Err: err}
	}
	if seen {
		r.duplicates.Add(1)
		return nil
	}

	photo, err := r.resolver.Image(ctx, item.ImageURL)
	if err != nil {
		return &ResourceError{Resource: "photo " + item.ImageURL, Err: err}
	}

	encoded, err := r.compositor.Compose(item, cfg, render.Resources{
		Photo:      photo,
		Logo:       resources.Logo,
		TitleFont:  resources.TitleFont,
		FooterFont: resources.FooterFont,
	})
	if err != nil {
		return &RenderError{Link: item.SourceLink, Err: err}
	}

	artifact := models.Artifact{
		Image:   encoded,
		Caption: publish.Caption(item, cfg),
	}

	if err := limiter.Wait(ctx); err != nil {
		return err
	}

	results, err := r.transport.Publish(ctx, artifact, cfg)
	if err != nil {
		return &PublishError{Link: item.SourceLink, Err: err}
	}

	if err := r.ledger.Commit(ctx, tenant.ID, item.SourceLink); err != nil {
		if errors.Is(err, ledger.ErrAlreadySeen) {
			// A concurrent worker won the race; the item is handled.
			r.duplicates.Add(1)
			return nil
		}
		return &LedgerError{Err: err}
	}

	r.processed.Add(1)
	log.Info().
		Int64("tenant_id", tenant.ID).
		Str("link", item.SourceLink).
		Int("channels", len(results)).
		Msg("Item published")
	return nil
}
