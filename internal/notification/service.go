package notification

import (
	"context"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/internal/projection"
	"github.com/weiawesome/wes-io-social/internal/repository"
	pkglog "github.com/weiawesome/wes-io-social/pkg/log"
)

// Deliverer pushes a rendered notification to the target's live connections.
type Deliverer interface {
	Deliver(ctx context.Context, targetID string, view domain.NotificationView) error
}

// ViewerLoader loads a viewer neighbourhood for projection.
type ViewerLoader interface {
	Viewer(ctx context.Context, viewerID string, subjectIDs []string) (*domain.Viewer, error)
}

// Config sizes the worker pool.
type Config struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
}

// Service consumes activity events. Events for one target always land on the
// same worker, so they are persisted and delivered in publish order.
type Service struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	viewers       ViewerLoader
	deliverer     Deliverer
	cfg           Config

	queues []chan domain.ActivityEvent
	wg     sync.WaitGroup
	doneCh chan struct{}
}

// NewService creates a notification service.
func NewService(
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	viewers ViewerLoader,
	deliverer Deliverer,
	cfg Config,
) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	return &Service{
		notifications: notifications,
		users:         users,
		viewers:       viewers,
		deliverer:     deliverer,
		cfg:           cfg,
		doneCh:        make(chan struct{}),
	}
}

// Start launches the workers and a dispatcher reading events. Everything
// stops once ctx is cancelled or events is closed.
func (s *Service) Start(ctx context.Context, events <-chan domain.ActivityEvent) {
	s.queues = make([]chan domain.ActivityEvent, s.cfg.Workers)
	for i := range s.queues {
		s.queues[i] = make(chan domain.ActivityEvent, s.cfg.QueueSize)
		s.wg.Add(1)
		go s.work(ctx, i, s.queues[i])
	}
	go s.dispatch(ctx, events)
}

// Done is closed once every worker has exited.
func (s *Service) Done() <-chan struct{} {
	return s.doneCh
}

func (s *Service) dispatch(ctx context.Context, events <-chan domain.ActivityEvent) {
	defer func() {
		for _, q := range s.queues {
			close(q)
		}
		s.wg.Wait()
		close(s.doneCh)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			q := s.queues[s.shard(ev.TargetID)]
			select {
			case q <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Service) shard(targetID string) int {
	return int(xxhash.Sum64String(targetID) % uint64(len(s.queues)))
}

func (s *Service) work(ctx context.Context, id int, queue <-chan domain.ActivityEvent) {
	defer s.wg.Done()

	logger := pkglog.L().With().Int(pkglog.FieldWorker, id).Logger()
	ctx = pkglog.WithLogger(ctx, logger)

	for ev := range queue {
		s.safeHandle(ctx, ev)
	}
}

// safeHandle isolates one event: neither an error nor a panic escapes.
func (s *Service) safeHandle(ctx context.Context, ev domain.ActivityEvent) {
	l := pkglog.Ctx(ctx)
	defer func() {
		if r := recover(); r != nil {
			l.Error().
				Interface("panic", r).
				Str(pkglog.FieldEventType, ev.Type).
				Str(pkglog.FieldTargetID, ev.TargetID).
				Msg("recovered from panic while handling activity event")
		}
	}()

	if err := s.Handle(ctx, ev); err != nil {
		l.Error().Err(err).
			Str(pkglog.FieldEventType, ev.Type).
			Str(pkglog.FieldUserID, ev.InitiatorID).
			Str(pkglog.FieldTargetID, ev.TargetID).
			Msg("failed to handle activity event")
	}
}

// Handle persists the notification for ev, projects it for the target and
// hands it to the deliverer.
func (s *Service) Handle(ctx context.Context, ev domain.ActivityEvent) error {
	switch ev.Type {
	case domain.NotificationFollow, domain.NotificationComment:
	default:
		return fmt.Errorf("unknown activity type %q", ev.Type)
	}

	n := &domain.Notification{
		Type:        ev.Type,
		InitiatorID: ev.InitiatorID,
		TargetID:    ev.TargetID,
		Image:       ev.Image,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	initiator, err := s.users.GetByID(ctx, ev.InitiatorID)
	if err != nil {
		return fmt.Errorf("load initiator: %w", err)
	}
	viewer, err := s.viewers.Viewer(ctx, ev.TargetID, []string{ev.InitiatorID})
	if err != nil {
		return err
	}

	view := projection.Notification(n, initiator, viewer)
	if err := s.deliverer.Deliver(ctx, ev.TargetID, view); err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	return nil
}

// List returns a page of userID's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string, page domain.Page) ([]domain.NotificationView, error) {
	page = page.Normalize()
	items, err := s.notifications.ListByTarget(ctx, userID, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(items))
	for _, n := range items {
		ids = append(ids, n.InitiatorID)
	}
	initiators, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	viewer, err := s.viewers.Viewer(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.NotificationView, 0, len(items))
	for _, n := range items {
		if initiator, ok := initiators[n.InitiatorID]; ok {
			out = append(out, projection.Notification(n, initiator, viewer))
		}
	}
	return out, nil
}

// MarkRead flags one of userID's notifications as read.
func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	return s.notifications.MarkRead(ctx, id, userID)
}

// MarkAllRead flags every notification of userID as read.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID)
}
