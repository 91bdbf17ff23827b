package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/weiawesome/wes-io-social/internal/avatar"
	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/internal/graph"
	"github.com/weiawesome/wes-io-social/internal/hub"
	"github.com/weiawesome/wes-io-social/internal/notification"
	"github.com/weiawesome/wes-io-social/internal/repository"
	"github.com/weiawesome/wes-io-social/internal/service"
	"github.com/weiawesome/wes-io-social/internal/testutil"
	"github.com/weiawesome/wes-io-social/internal/verification"
	"github.com/weiawesome/wes-io-social/pkg/jwt"
	"github.com/weiawesome/wes-io-social/pkg/log"
	"github.com/weiawesome/wes-io-social/pkg/middleware"
	"github.com/weiawesome/wes-io-social/pkg/pubsub"
	"github.com/weiawesome/wes-io-social/pkg/storage"
)

type inboxMailer chan string

func (m inboxMailer) SendCode(_ context.Context, _ string, _ domain.Purpose, code string) error {
	m <- code
	return nil
}

type apiFixture struct {
	srv    *httptest.Server
	db     *gorm.DB
	hub    *hub.Hub
	tokens *jwt.Manager
	inbox  inboxMailer
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	db := testutil.NewDB(t)
	users := repository.NewGormUserRepository(db)
	posts := repository.NewGormPostRepository(db)
	comments := repository.NewGormCommentRepository(db)
	likes := repository.NewGormLikeRepository(db)
	lists := repository.NewGormListRepository(db)

	busPS := pubsub.NewMemoryPubSub(pubsub.MemoryConfig{})
	deliveryPS := pubsub.NewMemoryPubSub(pubsub.MemoryConfig{})
	t.Cleanup(func() {
		busPS.Close()
		deliveryPS.Close()
	})

	activity := notification.NewBus(busPS)
	g := graph.New(users, repository.NewGormGraphRepository(db), activity, nil)

	tokens, err := jwt.NewManager("api-test-secret-0123456789", time.Hour, 24*time.Hour, "wes-io-social")
	if err != nil {
		t.Fatal(err)
	}
	inbox := make(inboxMailer, 4)
	codes := verification.NewService(verification.NewGormStore(db), users, inbox, verification.DefaultTTL)

	objects, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir(), BaseURL: "/media"})
	if err != nil {
		t.Fatal(err)
	}

	wsHub := hub.NewHub()
	relay := hub.NewRelay(deliveryPS, wsHub)
	if err := relay.Start(ctx); err != nil {
		t.Fatal(err)
	}
	notifications := notification.NewService(repository.NewGormNotificationRepository(db), users, g, relay, notification.Config{Workers: 2})
	events, err := activity.Subscribe(ctx)
	if err != nil {
		t.Fatal(err)
	}
	notifications.Start(ctx, events)

	mw := middleware.NewAuthMiddleware(tokens)
	h := NewHandler(Services{
		Auth:          service.NewAuthService(users, codes, tokens, 4),
		Users:         service.NewUserService(users, g, avatar.NewProcessor(objects, avatar.Config{})),
		Posts:         service.NewPostService(posts, comments, likes, lists, users, g),
		Comments:      service.NewCommentService(comments, posts, likes, users, g, activity),
		Lists:         service.NewListService(lists, posts, g),
		Notifications: notifications,
	}, mw, Config{})

	r := gin.New()
	r.Use(log.GinMiddleware(log.L()))
	RegisterHealth(r)
	h.RegisterRoutes(r)
	NewWSHandler(wsHub, mw, hub.DefaultConfig()).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &apiFixture{srv: srv, db: db, hub: wsHub, tokens: tokens, inbox: inbox}
}

func (f *apiFixture) token(t *testing.T, userID string) string {
	t.Helper()
	pair, err := f.tokens.GenerateTokenPair(userID)
	if err != nil {
		t.Fatal(err)
	}
	return pair.AccessToken
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}, cookies ...*http.Cookie) (*http.Response, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, f.srv.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("%s %s: decode body: %v", method, path, err)
		}
	}
	return resp, env
}

func (f *apiFixture) dial(t *testing.T, query string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws/notifications" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if conn != nil {
		t.Cleanup(func() { conn.Close() })
	}
	return conn, resp, err
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestAPI_FollowPushesLiveNotification(t *testing.T) {
	f := newAPI(t)
	alice := testutil.CreateUser(t, f.db, "alice")
	bob := testutil.CreateUser(t, f.db, "bob")

	conn, _, err := f.dial(t, "?token="+f.token(t, bob.ID))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitFor(t, func() bool { return f.hub.ConnectionCount(bob.ID) == 1 })

	resp, env := f.do(t, http.MethodPost, "/api/v1/users/"+bob.ID+"/follow", f.token(t, alice.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("follow status = %d, body %s", resp.StatusCode, env.Data)
	}
	var follow domain.FollowResult
	if err := json.Unmarshal(env.Data, &follow); err != nil || !follow.NowFollowing {
		t.Fatalf("follow result = %s, %v", env.Data, err)
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var frame struct {
		Type    string                  `json:"type"`
		Payload domain.NotificationView `json:"payload"`
	}
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if frame.Type != pubsub.EventNotification || frame.Payload.Type != domain.NotificationFollow {
		t.Fatalf("frame = %+v", frame)
	}
	initiator := frame.Payload.Initiator
	if initiator.ID != alice.ID {
		t.Errorf("initiator = %s, want %s", initiator.ID, alice.ID)
	}
	if !initiator.IsViewerFollowed || initiator.IsFollowedByViewer {
		t.Errorf("initiator flags = %+v", initiator.RelationFlags)
	}

	resp, env = f.do(t, http.MethodGet, "/api/v1/notifications", f.token(t, bob.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var page struct {
		Items []domain.NotificationView `json:"items"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil || len(page.Items) != 1 {
		t.Fatalf("notifications = %s, %v", env.Data, err)
	}
}

func TestAPI_WebSocketRejectsBadCredential(t *testing.T) {
	f := newAPI(t)
	user := testutil.CreateUser(t, f.db, "carol")
	pair, err := f.tokens.GenerateTokenPair(user.ID)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		query string
	}{
		{"missing token", ""},
		{"garbage token", "?token=not-a-jwt"},
		{"refresh token", "?token=" + pair.RefreshToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := f.dial(t, tt.query)
			if err != websocket.ErrBadHandshake {
				t.Fatalf("err = %v, want bad handshake", err)
			}
			if resp == nil || resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("resp = %+v, want 401", resp)
			}
		})
	}
	if n := f.hub.ConnectionCount(user.ID); n != 0 {
		t.Errorf("connections = %d, want 0", n)
	}
}

func TestAPI_SignUpSetsCookies(t *testing.T) {
	f := newAPI(t)
	email := "dave@example.com"

	resp, env := f.do(t, http.MethodPost, "/api/v1/auth/code", "", gin.H{"email": email, "purpose": domain.PurposeSignUp})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("code status = %d, error %+v", resp.StatusCode, env.Error)
	}
	var code string
	select {
	case code = <-f.inbox:
	case <-time.After(2 * time.Second):
		t.Fatal("no code mailed")
	}

	resp, env = f.do(t, http.MethodPost, "/api/v1/auth/sign-up", "", gin.H{
		"name":     "Dave",
		"email":    email,
		"password": "secret123",
		"code":     code,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("sign-up status = %d, error %+v", resp.StatusCode, env.Error)
	}

	var access *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.AccessCookie {
			access = ck
		}
	}
	if access == nil || access.Value == "" || !access.HttpOnly {
		t.Fatalf("access cookie = %+v", access)
	}

	resp, env = f.do(t, http.MethodGet, "/api/v1/auth/me", "", nil, access)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d, error %+v", resp.StatusCode, env.Error)
	}
	var me domain.AccountView
	if err := json.Unmarshal(env.Data, &me); err != nil || me.Email != email || me.Handle != "dave" {
		t.Fatalf("me = %s, %v", env.Data, err)
	}

	resp, _ = f.do(t, http.MethodPost, "/api/v1/auth/sign-out", "", nil, access)
	cleared := 0
	for _, ck := range resp.Cookies() {
		if ck.MaxAge < 0 {
			cleared++
		}
	}
	if cleared != 2 {
		t.Errorf("cleared cookies = %d, want 2", cleared)
	}
}

func TestAPI_ErrorEnvelope(t *testing.T) {
	f := newAPI(t)
	alice := testutil.CreateUser(t, f.db, "alice")
	bob := testutil.CreateUser(t, f.db, "bob")
	aliceToken := f.token(t, alice.ID)
	bobToken := f.token(t, bob.ID)

	resp, env := f.do(t, http.MethodPost, "/api/v1/posts", bobToken, gin.H{
		"title": "hello",
		"body":  "first post",
		"tags":  []string{"intro"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create post status = %d, error %+v", resp.StatusCode, env.Error)
	}
	var post domain.PostView
	if err := json.Unmarshal(env.Data, &post); err != nil {
		t.Fatal(err)
	}
	if resp, _ := f.do(t, http.MethodPost, "/api/v1/users/"+alice.ID+"/block", bobToken, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("block status = %d", resp.StatusCode)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{"missing post", http.MethodGet, "/api/v1/posts/missing", "", nil, http.StatusNotFound, "NOT_FOUND"},
		{"no credential", http.MethodPost, "/api/v1/posts", "", gin.H{"title": "x"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"self follow", http.MethodPost, "/api/v1/users/" + alice.ID + "/follow", aliceToken, nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown purpose", http.MethodPost, "/api/v1/auth/code", "", gin.H{"email": "x@example.com", "purpose": "other"}, http.StatusBadRequest, "BAD_REQUEST"},
		{"short list name", http.MethodPost, "/api/v1/lists", aliceToken, gin.H{"name": "ab"}, http.StatusBadRequest, "BAD_REQUEST"},
		{"bad page", http.MethodGet, "/api/v1/posts?page=x", "", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"blocked post", http.MethodGet, "/api/v1/posts/" + post.ID, aliceToken, nil, http.StatusForbidden, "FORBIDDEN"},
		{"blocked follow", http.MethodPost, "/api/v1/users/" + bob.ID + "/follow", aliceToken, nil, http.StatusForbidden, "FORBIDDEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := f.do(t, tt.method, tt.path, tt.token, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if env.Success || env.Error == nil || env.Error.Code != tt.wantCode {
				t.Fatalf("envelope = %+v, want code %s", env, tt.wantCode)
			}
		})
	}

	resp, env = f.do(t, http.MethodGet, "/api/v1/posts/"+post.ID, "", nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Errorf("anonymous get status = %d", resp.StatusCode)
	}
}
