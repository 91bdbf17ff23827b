// Package hub keeps the live websocket connections of each identity and
// pushes notifications to them.
package hub

import (
	"encoding/json"
	"sync"

	pkglog "github.com/weiawesome/wes-io-social/pkg/log"
)

// Hub groups connections by identity. Each group has its own lock; there is
// no hub-wide lock.
type Hub struct {
	groups sync.Map // userID -> *group
}

type group struct {
	mu      sync.Mutex
	clients map[string]*Client
	removed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Join adds c to its identity's group and marks it authenticated.
func (h *Hub) Join(c *Client) {
	for {
		v, _ := h.groups.LoadOrStore(c.UserID, &group{clients: make(map[string]*Client)})
		g := v.(*group)

		g.mu.Lock()
		if g.removed {
			// Lost a race with the last leaver; retry with a fresh group.
			g.mu.Unlock()
			continue
		}
		g.clients[c.ID] = c
		g.mu.Unlock()
		break
	}
	c.setState(StateAuthenticated)

	l := pkglog.L()
	l.Debug().
		Str(pkglog.FieldConnectionID, c.ID).
		Str(pkglog.FieldUserID, c.UserID).
		Msg("connection joined")
}

// Leave removes c from its group. The last leaver removes the group.
func (h *Hub) Leave(c *Client) {
	v, ok := h.groups.Load(c.UserID)
	if !ok {
		return
	}
	g := v.(*group)

	g.mu.Lock()
	if _, ok := g.clients[c.ID]; !ok {
		g.mu.Unlock()
		return
	}
	delete(g.clients, c.ID)
	if len(g.clients) == 0 {
		g.removed = true
		h.groups.CompareAndDelete(c.UserID, g)
	}
	g.mu.Unlock()

	l := pkglog.L()
	l.Debug().
		Str(pkglog.FieldConnectionID, c.ID).
		Str(pkglog.FieldUserID, c.UserID).
		Msg("connection left")
}

// Deliver marshals message once and enqueues it to every connection of
// userID. It returns how many connections accepted it. Connections whose
// buffer is full are dropped.
func (h *Hub) Deliver(userID string, message interface{}) (int, error) {
	data, err := json.Marshal(message)
	if err != nil {
		return 0, err
	}
	return h.DeliverRaw(userID, data), nil
}

// DeliverRaw enqueues an encoded frame to every connection of userID.
func (h *Hub) DeliverRaw(userID string, data []byte) int {
	v, ok := h.groups.Load(userID)
	if !ok {
		return 0
	}
	g := v.(*group)

	var delivered int
	var slow []*Client
	g.mu.Lock()
	for _, c := range g.clients {
		if c.enqueue(data) {
			delivered++
		} else {
			slow = append(slow, c)
		}
	}
	g.mu.Unlock()

	for _, c := range slow {
		l := pkglog.L()
		l.Warn().
			Str(pkglog.FieldConnectionID, c.ID).
			Str(pkglog.FieldUserID, userID).
			Msg("dropping slow connection")
		go h.remove(c)
	}
	return delivered
}

// ConnectionCount returns the number of live connections of userID.
func (h *Hub) ConnectionCount(userID string) int {
	v, ok := h.groups.Load(userID)
	if !ok {
		return 0
	}
	g := v.(*group)
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.clients)
}

func (h *Hub) remove(c *Client) {
	h.Leave(c)
	c.Close()
}
