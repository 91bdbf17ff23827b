package pubsub

import (
	"context"
	"errors"
	"path"
	"sync"

	pkglog "github.com/weiawesome/wes-io-social/pkg/log"
)

// ErrClosed is returned when using a closed PubSub.
var ErrClosed = errors.New("pubsub: closed")

type memorySub struct {
	key     string
	pattern bool
	ch      chan *Event
}

func (s *memorySub) matches(channel string) bool {
	if !s.pattern {
		return s.key == channel
	}
	ok, err := path.Match(s.key, channel)
	return err == nil && ok
}

// MemoryPubSub is an in-process PubSub. Publish never blocks: a subscriber
// whose buffer is full misses the event, which is logged.
type MemoryPubSub struct {
	mu         sync.RWMutex
	subs       map[*memorySub]struct{}
	bufferSize int
	closed     bool
}

// NewMemoryPubSub creates an in-process PubSub.
func NewMemoryPubSub(cfg MemoryConfig) *MemoryPubSub {
	return &MemoryPubSub{
		subs:       make(map[*memorySub]struct{}),
		bufferSize: bufferOrDefault(cfg.BufferSize),
	}
}

// Publish delivers the event to every matching subscription.
func (m *MemoryPubSub) Publish(ctx context.Context, channel string, event *Event) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}

	for sub := range m.subs {
		if !sub.matches(channel) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			l := pkglog.Ctx(ctx)
			l.Warn().
				Str(pkglog.FieldChannel, channel).
				Str(pkglog.FieldEventType, event.Type).
				Msg("subscriber buffer full, event dropped")
		}
	}
	return nil
}

// Subscribe subscribes to a specific channel.
func (m *MemoryPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Event, error) {
	return m.add(ctx, channel, false)
}

// SubscribePattern subscribes to channels matching a glob pattern.
func (m *MemoryPubSub) SubscribePattern(ctx context.Context, pattern string) (<-chan *Event, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, err
	}
	return m.add(ctx, pattern, true)
}

func (m *MemoryPubSub) add(ctx context.Context, key string, pattern bool) (<-chan *Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	sub := &memorySub{key: key, pattern: pattern, ch: make(chan *Event, m.bufferSize)}
	m.subs[sub] = struct{}{}

	go func() {
		<-ctx.Done()
		m.remove(sub)
	}()

	return sub.ch, nil
}

func (m *MemoryPubSub) remove(sub *memorySub) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[sub]; ok {
		delete(m.subs, sub)
		close(sub.ch)
	}
}

// Unsubscribe removes every subscription registered under channel or pattern.
func (m *MemoryPubSub) Unsubscribe(ctx context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for sub := range m.subs {
		if sub.key == channel {
			delete(m.subs, sub)
			close(sub.ch)
		}
	}
	return nil
}

// Close ends every subscription.
func (m *MemoryPubSub) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for sub := range m.subs {
		delete(m.subs, sub)
		close(sub.ch)
	}
	m.closed = true
	return nil
}
