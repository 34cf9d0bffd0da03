package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mpetrov/threadsync/internal/database"
	"github.com/mpetrov/threadsync/internal/media"
	"github.com/mpetrov/threadsync/internal/threads"
	"github.com/mpetrov/threadsync/pkg/models"
)

// Fetcher retrieves a user's Threads posts created at or after the since date,
// in ascending timestamp order
type Fetcher interface {
	PostsSince(ctx context.Context, accessToken string, since time.Time) ([]threads.Post, error)
}

// Sender fans a post out to the user's channels
type Sender interface {
	SendToChannels(ctx context.Context, user *models.User, caption string, media []models.MediaItem) error
}

// Store is the slice of the database the poller needs
type Store interface {
	GetEligibleUsers(ctx context.Context, now time.Time) ([]*models.User, error)
	GetProcessedPostIDs(ctx context.Context, userID int64) (map[string]struct{}, error)
	RecordProcessed(ctx context.Context, threadsPostID string, userID int64) error
}

// Poller drives the periodic sync cycle
type Poller struct {
	store    Store
	fetcher  Fetcher
	sender   Sender
	interval time.Duration
	workers  int
	logger   *slog.Logger

	mu       sync.Mutex
	inFlight map[int64]struct{} // user ids with a running pipeline
}

// New creates a new poller
func New(store Store, fetcher Fetcher, sender Sender, interval time.Duration, workers int, logger *slog.Logger) *Poller {
	if workers < 1 {
		workers = 1
	}
	return &Poller{
		store:    store,
		fetcher:  fetcher,
		sender:   sender,
		interval: interval,
		workers:  workers,
		logger:   logger.With("component", "poller"),
		inFlight: make(map[int64]struct{}),
	}
}

// Run polls on a fixed interval until the context is cancelled
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("starting poller", "interval", p.interval, "workers", p.workers)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return
		case <-ticker.C:
			p.RunCycle(ctx)
		}
	}
}

// RunCycle processes every eligible user once. Users are handled by a bounded
// worker pool; a user whose previous run is still in flight is skipped, so
// two cycles never race on the same processed-id set.
func (p *Poller) RunCycle(ctx context.Context) {
	p.logger.Debug("starting polling cycle")

	users, err := p.store.GetEligibleUsers(ctx, time.Now())
	if err != nil {
		p.logger.Error("failed to select eligible users", "error", err)
		return
	}

	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup
	for _, user := range users {
		if !p.tryAcquire(user.ID) {
			p.logger.Debug("previous run still in flight, skipping user", "telegram_id", user.TelegramID)
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(u *models.User) {
			defer wg.Done()
			defer func() { <-sem }()
			defer p.release(u.ID)

			if err := p.processUser(ctx, u); err != nil {
				p.logger.Error("failed to process user", "telegram_id", u.TelegramID, "error", err)
			}
		}(user)
	}
	wg.Wait()

	p.logger.Debug("polling cycle completed")
}

func (p *Poller) tryAcquire(userID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.inFlight[userID]; ok {
		return false
	}
	p.inFlight[userID] = struct{}{}
	return true
}

func (p *Poller) release(userID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inFlight, userID)
}

// processUser runs fetch → filter → deliver for one user. A fetch error
// skips the user for this cycle; the next cycle retries naturally because
// the watermark and processed set are unchanged.
func (p *Poller) processUser(ctx context.Context, user *models.User) error {
	if user.ThreadsLongLivedToken == nil || user.SyncStartDate == nil {
		return nil
	}

	posts, err := p.fetcher.PostsSince(ctx, *user.ThreadsLongLivedToken, *user.SyncStartDate)
	if err != nil {
		return fmt.Errorf("failed to fetch posts: %w", err)
	}

	processed, err := p.store.GetProcessedPostIDs(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load processed post ids: %w", err)
	}

	for _, post := range posts {
		if !admitted(post, processed, *user.SyncStartDate) {
			continue
		}
		if err := p.processPost(ctx, user, post); err != nil {
			// One broken post must not block the rest of the user's feed
			p.logger.Error("failed to process post",
				"post_id", post.ID,
				"telegram_id", user.TelegramID,
				"error", err,
			)
		}
	}
	return nil
}

// admitted reports whether a post still needs delivery: not yet processed
// and not older than the user's sync start date. The watermark guards
// against backfill even when the upstream since filter is imprecise.
func admitted(post threads.Post, processed map[string]struct{}, syncStart time.Time) bool {
	if _, ok := processed[post.ID]; ok {
		return false
	}
	return !post.Timestamp.Before(syncStart)
}

// processPost normalizes, delivers, then records the post as processed. The
// record is written only after delivery was attempted, so a crash in between
// re-delivers the post on the next cycle instead of losing it.
func (p *Poller) processPost(ctx context.Context, user *models.User, post threads.Post) error {
	items := media.Normalize(post)

	if err := p.sender.SendToChannels(ctx, user, post.Text, items); err != nil {
		return fmt.Errorf("failed to deliver post: %w", err)
	}

	if err := p.store.RecordProcessed(ctx, post.ID, user.ID); err != nil && !errors.Is(err, database.ErrAlreadyExists) {
		return fmt.Errorf("failed to record processed post: %w", err)
	}

	p.logger.Info("mirrored post", "post_id", post.ID, "telegram_id", user.TelegramID)
	return nil
}
