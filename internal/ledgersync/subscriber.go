package ledgersync

// Subscriber owns the long-lived event subscription described in spec.md
// §4.5: established from the genesis anchor on startup, no persisted
// cursor (the read store's block-upsert is idempotent, so a restart simply
// replays from the start). Reconnection backs off with a fixed retry wait
// and retries indefinitely (spec.md §5).

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"provenance-chain/internal/platform"
)

type Subscriber struct {
	client         platform.EventClient
	namespacePrefix string
	retryWait      time.Duration
	log            *logrus.Logger
}

func NewSubscriber(client platform.EventClient, namespacePrefix string, retryWait time.Duration, log *logrus.Logger) *Subscriber {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Subscriber{client: client, namespacePrefix: namespacePrefix, retryWait: retryWait, log: log}
}

// Run subscribes from block 0 and forwards every delivered BlockDelta to
// out, reconnecting with s.retryWait between attempts. Every subscribe or
// stream failure is logged and retried, a rejected subscription included;
// Run returns only when ctx is canceled, with ctx.Err().
func (s *Subscriber) Run(ctx context.Context, out chan<- platform.BlockDelta) error {
	for {
		if err := s.runOnce(ctx, out); err != nil {
			s.log.WithError(err).Warn("ledgersync subscription dropped, retrying")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.retryWait):
		}
	}
}

func (s *Subscriber) runOnce(ctx context.Context, out chan<- platform.BlockDelta) error {
	sub, err := s.client.Subscribe(ctx, s.namespacePrefix, 0)
	if err != nil {
		return err
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delta, ok := <-sub.Deltas():
			if !ok {
				return sub.Err()
			}
			select {
			case out <- delta:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
