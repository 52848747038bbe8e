// Package poller implements the pull-based ingestion producer: a background
// loop that long-polls the Telegram getUpdates method, feeds each message
// through the shared ingest path, and advances a monotonic cursor so no
// update is ever processed twice.
package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/alertline/go-alert-relay/internal/services"
	"github.com/alertline/go-alert-relay/internal/telegram"
)

// UpdateFetcher is the inbound Telegram contract required by the poller.
type UpdateFetcher interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
}

// Poller owns the long-poll loop and its cursor. The cursor (the next
// update_id to request) is touched by no other component.
type Poller struct {
	fetcher UpdateFetcher
	ingest  *services.IngestService

	pollTimeout time.Duration
	retryDelay  time.Duration

	offset int64
	log    zerolog.Logger
}

// New constructs a Poller. pollTimeout bounds each getUpdates wait;
// retryDelay is the pause inserted after a failed cycle.
func New(fetcher UpdateFetcher, ingest *services.IngestService, pollTimeout, retryDelay time.Duration, log zerolog.Logger) *Poller {
	return &Poller{
		fetcher:     fetcher,
		ingest:      ingest,
		pollTimeout: pollTimeout,
		retryDelay:  retryDelay,
		log:         log,
	}
}

// Run polls until ctx is cancelled. A transient fetch error is logged and the
// loop continues after retryDelay; it is never fatal.
func (p *Poller) Run(ctx context.Context) {
	p.log.Info().Dur("poll_timeout", p.pollTimeout).Msg("update poller started")
	for {
		if ctx.Err() != nil {
			p.log.Info().Msg("update poller stopped")
			return
		}
		if err := p.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				p.log.Info().Msg("update poller stopped")
				return
			}
			p.log.Warn().Err(err).Msg("poll cycle failed, retrying")
			select {
			case <-ctx.Done():
				p.log.Info().Msg("update poller stopped")
				return
			case <-time.After(p.retryDelay):
			}
		}
	}
}

// Poll performs one cycle: fetch, then advance the cursor past everything
// fetched, then process. The cursor moves exactly once per cycle and never
// backwards, independent of per-message processing outcome.
func (p *Poller) Poll(ctx context.Context) error {
	updates, err := p.fetcher.GetUpdates(ctx, p.offset, p.pollTimeout)
	if err != nil {
		return err
	}

	for _, u := range updates {
		if u.UpdateID >= p.offset {
			p.offset = u.UpdateID + 1
		}
	}

	for _, u := range updates {
		p.ingest.HandleMessage(ctx, u.Message)
	}
	return nil
}

// Offset exposes the next cursor value for tests.
func (p *Poller) Offset() int64 { return p.offset }
