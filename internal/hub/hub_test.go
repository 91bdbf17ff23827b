package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/pkg/pubsub"
)

type testServer struct {
	hub     *Hub
	srv     *httptest.Server
	clients chan *Client
}

// newTestServer binds each connection to the user named by the "user" query
// parameter. pumps=false leaves the write pump stopped.
func newTestServer(t *testing.T, cfg Config, pumps bool) *testServer {
	t.Helper()
	ts := &testServer{hub: NewHub(), clients: make(chan *Client, 16)}
	upgrader := websocket.Upgrader{}

	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient(uuid.New().String(), r.URL.Query().Get("user"), ts.hub, conn, cfg)
		ts.hub.Join(c)
		if pumps {
			go c.WritePump()
			go c.ReadPump()
		}
		ts.clients <- c
	}))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) dial(t *testing.T, user string) (*websocket.Conn, *Client) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	select {
	case c := <-ts.clients:
		return conn, c
	case <-time.After(2 * time.Second):
		t.Fatal("server never registered the connection")
		return nil, nil
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg map[string]interface{}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return msg
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestHub_DeliverToEveryConnectionOfUser(t *testing.T) {
	ts := newTestServer(t, DefaultConfig(), true)

	phone, pc := ts.dial(t, "alice")
	laptop, _ := ts.dial(t, "alice")
	other, _ := ts.dial(t, "bob")

	if pc.State() != StateAuthenticated {
		t.Errorf("state = %s, want authenticated", pc.State())
	}
	if n := ts.hub.ConnectionCount("alice"); n != 2 {
		t.Fatalf("alice connections = %d, want 2", n)
	}

	n, err := ts.hub.Deliver("alice", Message{Type: MsgTypeNotification, Payload: map[string]string{"id": "n1"}})
	if err != nil || n != 2 {
		t.Fatalf("Deliver = %d, %v; want 2", n, err)
	}

	for _, conn := range []*websocket.Conn{phone, laptop} {
		msg := readMessage(t, conn)
		if msg["type"] != MsgTypeNotification {
			t.Errorf("type = %v", msg["type"])
		}
	}

	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Error("bob received alice's notification")
	}

	if n, _ := ts.hub.Deliver("nobody", Message{Type: MsgTypeNotification}); n != 0 {
		t.Errorf("delivered to %d connections of an absent user", n)
	}
}

func TestHub_PingPong(t *testing.T) {
	ts := newTestServer(t, DefaultConfig(), true)
	conn, _ := ts.dial(t, "alice")

	tests := []struct {
		name  string
		frame string
		want  string
	}{
		{"json ping", `{"type":"ping"}`, MsgTypePong},
		{"bare ping", "ping", MsgTypePong},
		{"unknown type", `{"type":"dance"}`, MsgTypeError},
		{"garbage", "{", MsgTypeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.frame)); err != nil {
				t.Fatal(err)
			}
			if msg := readMessage(t, conn); msg["type"] != tt.want {
				t.Errorf("reply type = %v, want %s", msg["type"], tt.want)
			}
		})
	}
}

func TestHub_DisconnectLeavesGroup(t *testing.T) {
	ts := newTestServer(t, DefaultConfig(), true)
	conn, c := ts.dial(t, "alice")

	conn.Close()
	waitFor(t, func() bool { return ts.hub.ConnectionCount("alice") == 0 })
	waitFor(t, func() bool { return c.State() == StateClosed })

	if _, ok := ts.hub.groups.Load("alice"); ok {
		t.Error("empty group was not removed")
	}
}

func TestHub_SlowConnectionDropped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SendBufferSize = 1
	ts := newTestServer(t, cfg, false)
	_, c := ts.dial(t, "alice")

	if n := ts.hub.DeliverRaw("alice", []byte(`{"type":"a"}`)); n != 1 {
		t.Fatalf("first delivery = %d, want 1", n)
	}
	if n := ts.hub.DeliverRaw("alice", []byte(`{"type":"b"}`)); n != 0 {
		t.Fatalf("second delivery = %d, want 0", n)
	}

	waitFor(t, func() bool { return ts.hub.ConnectionCount("alice") == 0 })
	waitFor(t, func() bool { return c.State() == StateClosed })
}

func TestRelay_DeliversThroughPubSub(t *testing.T) {
	ts := newTestServer(t, DefaultConfig(), true)
	conn, _ := ts.dial(t, "bob")

	ps := pubsub.NewMemoryPubSub(pubsub.MemoryConfig{})
	defer ps.Close()
	relay := NewRelay(ps, ts.hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := relay.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	view := domain.NotificationView{
		ID:   "01HX",
		Type: domain.NotificationFollow,
		Initiator: domain.MemberView{
			UserSummary:   domain.UserSummary{ID: "alice-id", Handle: "alice"},
			RelationFlags: domain.RelationFlags{IsViewerFollowed: true},
		},
	}
	if err := relay.Deliver(ctx, "bob", view); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	msg := readMessage(t, conn)
	if msg["type"] != "new_notification" {
		t.Fatalf("type = %v", msg["type"])
	}
	payload, _ := msg["payload"].(map[string]interface{})
	initiator, _ := payload["initiator"].(map[string]interface{})
	if payload["id"] != "01HX" || initiator["handle"] != "alice" || initiator["isViewerFollowed"] != true {
		t.Errorf("payload = %v", payload)
	}

	cancel()
	select {
	case <-relay.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}
