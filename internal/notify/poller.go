package notify

import (
	"Polyclinic/internal/api/dto"
	"context"
	"fmt"
	log "log/slog"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/go-resty/resty/v2"
)

const (
	// DefaultInitialDelay gives the UI time to settle after login before
	// the first poll fires.
	DefaultInitialDelay = 2 * time.Second
	DefaultInterval     = 20 * time.Second
)

// Poller periodically fetches the unread summary and fires OnNotify once
// per event. The Store remembers what was already announced, so restarts
// and repeated polls of the same unread state stay silent.
type Poller struct {
	client *resty.Client
	store  *Store

	// URL is the absolute unread summary endpoint.
	URL string
	// Token is the bearer token of the polling account.
	Token string
	// Guard is checked before every poll. Returning false skips the
	// round entirely, including the HTTP request. Nil means always poll.
	Guard func() bool
	// OnNotify receives each not-yet-announced unread item.
	OnNotify func(item dto.UnreadItem)

	InitialDelay time.Duration
	Interval     time.Duration
}

func NewPoller(client *resty.Client, store *Store, url, token string) *Poller {
	return &Poller{
		client:       client,
		store:        store,
		URL:          url,
		Token:        token,
		InitialDelay: DefaultInitialDelay,
		Interval:     DefaultInterval,
	}
}

// Run polls until the context is canceled. Poll errors are logged and
// the loop keeps going; a flaky network must not kill the notifier.
func (p *Poller) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.InitialDelay):
	}

	if err := p.RunOnce(ctx); err != nil {
		log.Warn("unread poll failed", "err", err)
	}

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.RunOnce(ctx); err != nil {
				log.Warn("unread poll failed", "err", err)
			}
		}
	}
}

// RunOnce performs a single poll round: fetch, diff against the store,
// announce the new items, then remember them. Items are remembered only
// after OnNotify returns, so a crash mid-round re-announces rather than
// silently drops.
func (p *Poller) RunOnce(ctx context.Context) error {
	if p.Guard != nil && !p.Guard() {
		return nil
	}

	summary, err := p.fetch(ctx)
	if err != nil {
		return err
	}

	fresh := make([]Key, 0, len(summary.Items))
	for _, item := range summary.Items {
		k := Key{Kind: item.Kind, ID: item.ID}
		if p.store.Contains(k) {
			continue
		}
		if p.OnNotify != nil {
			p.OnNotify(item)
		}
		fresh = append(fresh, k)
	}
	if len(fresh) == 0 {
		return nil
	}
	return p.store.Add(fresh...)
}

func (p *Poller) fetch(ctx context.Context) (*dto.UnreadSummaryDTO, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.Token).
		Get(p.URL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unread endpoint answered %d", resp.StatusCode())
	}

	var envelope struct {
		Code    int
		Message string
		Data    dto.UnreadSummaryDTO
	}
	if err = json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("malformed unread summary: %w", err)
	}
	if envelope.Code != http.StatusOK {
		return nil, fmt.Errorf("unread endpoint business code %d: %s", envelope.Code, envelope.Message)
	}
	return &envelope.Data, nil
}
