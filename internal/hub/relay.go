package hub

import (
	"context"
	"fmt"

	"github.com/weiawesome/wes-io-social/internal/domain"
	pkglog "github.com/weiawesome/wes-io-social/pkg/log"
	"github.com/weiawesome/wes-io-social/pkg/pubsub"
)

// Relay fans notifications out to every instance. Deliver publishes on the
// target's delivery channel; Start feeds that channel into the local hub.
type Relay struct {
	ps     pubsub.PubSub
	hub    *Hub
	doneCh chan struct{}
}

// NewRelay creates a relay between ps and hub.
func NewRelay(ps pubsub.PubSub, hub *Hub) *Relay {
	return &Relay{ps: ps, hub: hub, doneCh: make(chan struct{})}
}

// Deliver publishes view for targetID.
func (r *Relay) Deliver(ctx context.Context, targetID string, view domain.NotificationView) error {
	event, err := pubsub.NewEvent(pubsub.EventNotification, targetID, view)
	if err != nil {
		return err
	}
	return r.ps.Publish(ctx, pubsub.DeliveryChannel(targetID), event)
}

// Start subscribes to every delivery channel and pushes events into the local
// hub, one at a time, until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	events, err := r.ps.SubscribePattern(ctx, pubsub.DeliveryPattern())
	if err != nil {
		close(r.doneCh)
		return fmt.Errorf("subscribe delivery: %w", err)
	}

	go func() {
		defer close(r.doneCh)
		l := pkglog.L()
		for event := range events {
			n, err := r.hub.Deliver(event.Key, Message{Type: event.Type, Payload: event.Payload})
			if err != nil {
				l.Error().Err(err).Str(pkglog.FieldEventID, event.ID).Str(pkglog.FieldUserID, event.Key).Msg("failed to encode notification frame")
				continue
			}
			l.Debug().
				Str(pkglog.FieldEventID, event.ID).
				Str(pkglog.FieldUserID, event.Key).
				Int("connections", n).
				Msg("notification delivered")
		}
	}()
	return nil
}

// Done is closed once the relay stops reading.
func (r *Relay) Done() <-chan struct{} {
	return r.doneCh
}
