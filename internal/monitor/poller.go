package monitor

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/five82/daily/internal/client"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// StartPoller refreshes the store in the background until ctx is cancelled.
// It returns immediately.
func StartPoller(ctx context.Context, store *Store, fetcher client.StatusFetcher, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			Refresh(ctx, store, fetcher)
			timer.Reset(calculateBackoff(store.Snapshot().ConsecutiveFailures, interval))
		}
	}()
}

// Refresh performs one poll.
func Refresh(ctx context.Context, store *Store, fetcher client.StatusFetcher) {
	status, err := fetcher.FetchStatus(ctx)
	if err != nil {
		log.WithError(err).Debug("status poll failed")
	}
	store.Update(status, err)
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
