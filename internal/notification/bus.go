// Package notification turns activity events into persisted, projected and
// delivered notifications.
package notification

import (
	"context"
	"fmt"

	"github.com/weiawesome/wes-io-social/internal/domain"
	pkglog "github.com/weiawesome/wes-io-social/pkg/log"
	"github.com/weiawesome/wes-io-social/pkg/pubsub"
)

// Bus carries activity events from write paths to the notification service.
type Bus struct {
	ps pubsub.PubSub
}

// NewBus creates a Bus over ps.
func NewBus(ps pubsub.PubSub) *Bus {
	return &Bus{ps: ps}
}

// Publish sends ev on the target's activity channel. It never fails the
// caller: broker errors are logged and dropped.
func (b *Bus) Publish(ctx context.Context, ev domain.ActivityEvent) {
	l := pkglog.Ctx(ctx)

	event, err := pubsub.NewEvent(ev.Type, ev.TargetID, ev)
	if err != nil {
		l.Error().Err(err).Str(pkglog.FieldEventType, ev.Type).Msg("failed to encode activity event")
		return
	}

	channel := pubsub.ActivityChannel(ev.TargetID)
	if err := b.ps.Publish(ctx, channel, event); err != nil {
		l.Warn().Err(err).
			Str(pkglog.FieldChannel, channel).
			Str(pkglog.FieldEventType, ev.Type).
			Msg("failed to publish activity event")
	}
}

// Subscribe returns every activity event published to any target. The
// channel closes when ctx is cancelled or the subscription ends.
func (b *Bus) Subscribe(ctx context.Context) (<-chan domain.ActivityEvent, error) {
	events, err := b.ps.SubscribePattern(ctx, pubsub.ActivityPattern())
	if err != nil {
		return nil, fmt.Errorf("subscribe activity: %w", err)
	}

	out := make(chan domain.ActivityEvent)
	go func() {
		defer close(out)
		l := pkglog.L()
		for event := range events {
			var ev domain.ActivityEvent
			if err := event.UnmarshalPayload(&ev); err != nil {
				l.Warn().Err(err).Str(pkglog.FieldEventID, event.ID).Str(pkglog.FieldEventType, event.Type).Msg("skipping malformed activity event")
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
