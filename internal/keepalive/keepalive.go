// Package keepalive pings the service's own public health endpoint on an
// interval so free-tier hosts do not idle the process out. It is optional and
// entirely decoupled from the relay logic.
package keepalive

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Pinger periodically GETs baseURL + "/health".
type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
	log      zerolog.Logger
}

// New constructs a Pinger for baseURL (no trailing slash). A client timeout
// well under the interval keeps a stuck ping from overlapping the next one.
func New(baseURL string, interval time.Duration, log zerolog.Logger) *Pinger {
	return &Pinger{
		url:      baseURL + "/health",
		interval: interval,
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      log,
	}
}

// Run pings until ctx is cancelled. Failures are logged and ignored.
func (p *Pinger) Run(ctx context.Context) {
	p.log.Info().Str("url", p.url).Dur("interval", p.interval).Msg("keepalive started")
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("keepalive stopped")
			return
		case <-ticker.C:
			p.ping(ctx)
		}
	}
}

func (p *Pinger) ping(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		p.log.Warn().Err(err).Msg("keepalive request build failed")
		return
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Warn().Err(err).Msg("keepalive ping failed")
		return
	}
	resp.Body.Close()
	p.log.Debug().Int("status", resp.StatusCode).Msg("keepalive ping")
}
