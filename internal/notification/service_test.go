package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/internal/graph"
	"github.com/weiawesome/wes-io-social/internal/repository"
	"github.com/weiawesome/wes-io-social/internal/testutil"
	"github.com/weiawesome/wes-io-social/pkg/pubsub"
)

type delivery struct {
	targetID string
	view     domain.NotificationView
}

type chanDeliverer struct {
	out     chan delivery
	panicOn string
}

func (d *chanDeliverer) Deliver(_ context.Context, targetID string, view domain.NotificationView) error {
	if view.Initiator.ID == d.panicOn {
		panic("deliverer exploded")
	}
	d.out <- delivery{targetID: targetID, view: view}
	return nil
}

func (d *chanDeliverer) next(t *testing.T) delivery {
	t.Helper()
	select {
	case got := <-d.out:
		return got
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for delivery")
		return delivery{}
	}
}

type fixture struct {
	svc   *Service
	out   *chanDeliverer
	edges *repository.GormGraphRepository
	users map[string]*domain.User
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, domain.ActivityEvent) {}

func newFixture(t *testing.T, workers int, handles ...string) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	userRepo := repository.NewGormUserRepository(db)
	edges := repository.NewGormGraphRepository(db)
	g := graph.New(userRepo, edges, nopPublisher{}, nil)
	out := &chanDeliverer{out: make(chan delivery, 64)}

	users := make(map[string]*domain.User, len(handles))
	for _, h := range handles {
		users[h] = testutil.CreateUser(t, db, h)
	}

	svc := NewService(repository.NewGormNotificationRepository(db), userRepo, g, out, Config{Workers: workers, QueueSize: 4})
	return &fixture{svc: svc, out: out, edges: edges, users: users}
}

func (f *fixture) follow(initiator, target string) domain.ActivityEvent {
	return domain.ActivityEvent{
		Type:        domain.NotificationFollow,
		InitiatorID: f.users[initiator].ID,
		TargetID:    f.users[target].ID,
		OccurredAt:  time.Now(),
	}
}

func TestService_PerTargetOrdering(t *testing.T) {
	f := newFixture(t, 4, "a", "b", "c", "t1", "t2")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan domain.ActivityEvent)
	f.svc.Start(ctx, events)

	sequence := []string{"a", "b", "c", "a", "b", "c"}
	for _, initiator := range sequence {
		events <- f.follow(initiator, "t1")
		events <- f.follow(initiator, "t2")
	}

	got := map[string][]string{}
	for i := 0; i < 2*len(sequence); i++ {
		d := f.out.next(t)
		got[d.targetID] = append(got[d.targetID], d.view.Initiator.Handle)
	}

	for _, target := range []string{"t1", "t2"} {
		order := got[f.users[target].ID]
		if len(order) != len(sequence) {
			t.Fatalf("%s received %v", target, order)
		}
		for i := range sequence {
			if order[i] != sequence[i] {
				t.Fatalf("%s order = %v, want %v", target, order, sequence)
			}
		}
	}

	close(events)
	select {
	case <-f.svc.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop after events closed")
	}
}

func TestService_FailureIsolation(t *testing.T) {
	f := newFixture(t, 1, "bad", "good", "target")
	f.out.panicOn = f.users["bad"].ID
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan domain.ActivityEvent, 8)
	f.svc.Start(ctx, events)

	events <- domain.ActivityEvent{Type: "bogus", InitiatorID: f.users["good"].ID, TargetID: f.users["target"].ID}
	events <- domain.ActivityEvent{Type: domain.NotificationFollow, InitiatorID: "ghost", TargetID: f.users["target"].ID}
	events <- f.follow("bad", "target")
	events <- f.follow("good", "target")

	d := f.out.next(t)
	if d.view.Initiator.ID != f.users["good"].ID {
		t.Fatalf("delivered %+v, want the good event", d.view.Initiator)
	}
}

func TestService_ProjectsInitiatorForTarget(t *testing.T) {
	f := newFixture(t, 2, "alice", "bob")
	ctx := context.Background()
	alice, bob := f.users["alice"], f.users["bob"]

	if _, err := f.edges.ToggleFollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatal(err)
	}

	ev := f.follow("alice", "bob")
	if err := f.svc.Handle(ctx, ev); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	d := f.out.next(t)
	if d.targetID != bob.ID {
		t.Errorf("target = %s, want bob", d.targetID)
	}
	v := d.view
	if v.Type != domain.NotificationFollow || v.IsRead || v.ID == "" {
		t.Errorf("view = %+v", v)
	}
	if !v.Initiator.IsViewerFollowed || v.Initiator.IsFollowedByViewer {
		t.Errorf("initiator flags = %+v, want alice following bob only", v.Initiator.RelationFlags)
	}

	list, err := f.svc.List(ctx, bob.ID, domain.Page{})
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %v, %v", list, err)
	}
	if list[0].ID != v.ID || !list[0].Initiator.IsViewerFollowed {
		t.Errorf("listed = %+v", list[0])
	}

	if err := f.svc.MarkRead(ctx, alice.ID, v.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("MarkRead by non-target err = %v, want NotFound", err)
	}
	if err := f.svc.MarkRead(ctx, bob.ID, v.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	list, _ = f.svc.List(ctx, bob.ID, domain.Page{})
	if !list[0].IsRead {
		t.Error("notification not marked read")
	}
}

func TestBus_PublishSubscribe(t *testing.T) {
	ps := pubsub.NewMemoryPubSub(pubsub.MemoryConfig{BufferSize: 8})
	defer ps.Close()
	bus := NewBus(ps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	want := domain.ActivityEvent{
		Type:        domain.NotificationComment,
		InitiatorID: "a",
		TargetID:    "b",
		Image:       "/media/p.jpg",
		OccurredAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	bus.Publish(ctx, want)

	select {
	case got := <-events:
		if got.Type != want.Type || got.InitiatorID != want.InitiatorID || got.TargetID != want.TargetID ||
			got.Image != want.Image || !got.OccurredAt.Equal(want.OccurredAt) {
			t.Errorf("got %+v, want %+v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not received")
	}

	cancel()
	select {
	case _, ok := <-events:
		if ok {
			t.Error("unexpected event after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed after cancel")
	}
}

func TestBus_PublishAfterCloseDoesNotFail(t *testing.T) {
	ps := pubsub.NewMemoryPubSub(pubsub.MemoryConfig{})
	_ = ps.Close()

	// Publishing on a closed broker is logged, never surfaced.
	NewBus(ps).Publish(context.Background(), domain.ActivityEvent{Type: domain.NotificationFollow, TargetID: "x"})
}
