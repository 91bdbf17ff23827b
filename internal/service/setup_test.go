package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/internal/graph"
	"github.com/weiawesome/wes-io-social/internal/repository"
	"github.com/weiawesome/wes-io-social/internal/testutil"
	"github.com/weiawesome/wes-io-social/internal/verification"
	"github.com/weiawesome/wes-io-social/pkg/jwt"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.ActivityEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) all() []domain.ActivityEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ActivityEvent(nil), p.events...)
}

type codeMailer struct {
	mu    sync.Mutex
	codes map[string]chan string
}

func (m *codeMailer) inbox(email string) chan string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = map[string]chan string{}
	}
	if _, ok := m.codes[email]; !ok {
		m.codes[email] = make(chan string, 4)
	}
	return m.codes[email]
}

func (m *codeMailer) SendCode(_ context.Context, email string, _ domain.Purpose, code string) error {
	m.inbox(email) <- code
	return nil
}

func (m *codeMailer) await(t *testing.T, email string) string {
	t.Helper()
	select {
	case code := <-m.inbox(email):
		return code
	case <-time.After(2 * time.Second):
		t.Fatalf("no code mailed to %s", email)
		return ""
	}
}

type stubAvatars struct{ url string }

func (a stubAvatars) Process(context.Context, string, io.Reader) (string, error) {
	return a.url, nil
}

type env struct {
	db     *gorm.DB
	events *recordingPublisher
	mailer *codeMailer
	tokens *jwt.Manager

	users    repository.UserRepository
	graph    *graph.Graph
	auth     AuthService
	user     UserService
	posts    PostService
	comments CommentService
	lists    ListService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)

	users := repository.NewGormUserRepository(db)
	posts := repository.NewGormPostRepository(db)
	comments := repository.NewGormCommentRepository(db)
	likes := repository.NewGormLikeRepository(db)
	lists := repository.NewGormListRepository(db)

	events := &recordingPublisher{}
	g := graph.New(users, repository.NewGormGraphRepository(db), events, nil)

	mailer := &codeMailer{}
	codes := verification.NewService(verification.NewGormStore(db), users, mailer, verification.DefaultTTL)

	tokens, err := jwt.NewManager("test-secret-0123456789", time.Hour, 24*time.Hour, "wes-io-social")
	if err != nil {
		t.Fatal(err)
	}

	return &env{
		db:       db,
		events:   events,
		mailer:   mailer,
		tokens:   tokens,
		users:    users,
		graph:    g,
		auth:     NewAuthService(users, codes, tokens, bcrypt.MinCost),
		user:     NewUserService(users, g, stubAvatars{url: "/media/avatars/x.jpg"}),
		posts:    NewPostService(posts, comments, likes, lists, users, g),
		comments: NewCommentService(comments, posts, likes, users, g, events),
		lists:    NewListService(lists, posts, g),
	}
}

func (e *env) newUser(t *testing.T, handle string) *domain.User {
	t.Helper()
	return testutil.CreateUser(t, e.db, handle)
}

func (e *env) post(t *testing.T, creator *domain.User, title string) *domain.PostView {
	t.Helper()
	view, err := e.posts.Create(context.Background(), creator.ID, domain.NewPost{
		Title: title,
		Body:  "body of " + title,
		Tags:  []string{"go"},
		Image: "https://img.example.com/" + title + ".jpg",
	})
	if err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return view
}
