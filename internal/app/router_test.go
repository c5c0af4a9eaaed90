package app_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/plumeblog/plume/internal/app"
	"github.com/plumeblog/plume/internal/auth"
	"github.com/plumeblog/plume/internal/comments"
	"github.com/plumeblog/plume/internal/platform/httpx"
	"github.com/plumeblog/plume/internal/posts"
	"github.com/plumeblog/plume/internal/ratelimit"
	"github.com/plumeblog/plume/internal/shared"
	"github.com/plumeblog/plume/internal/validate"
)

type emptyUsers struct{}

func (emptyUsers) FindByEmail(context.Context, string) (*auth.User, error) {
	return nil, httpx.NotFoundError("user not found")
}

func (emptyUsers) FindByID(context.Context, int64) (*auth.User, error) {
	return nil, httpx.NotFoundError("user not found")
}

func (emptyUsers) CreateUser(context.Context, string, string, int64) (*auth.User, error) {
	return nil, httpx.ConflictError("not supported")
}

func (emptyUsers) FindRole(context.Context, int64) (*auth.Role, error) {
	return nil, httpx.NotFoundError("role not found")
}

func (emptyUsers) FindRoleByName(context.Context, string) (*auth.Role, error) {
	return nil, httpx.NotFoundError("role not found")
}

type emptyPosts struct{}

func (emptyPosts) List(context.Context, validate.ListParams) ([]posts.Post, shared.Meta, error) {
	return []posts.Post{}, shared.NewMeta(0, 1, 10), nil
}

func (emptyPosts) Search(context.Context, string, string, string) ([]posts.Post, error) {
	return []posts.Post{}, nil
}

func (emptyPosts) Get(context.Context, int64) (*posts.PostDetail, error) {
	return nil, httpx.NotFoundError("post not found")
}

func (emptyPosts) Create(context.Context, int64, posts.CreatePostRequest) (*posts.Post, error) {
	return nil, httpx.NotFoundError("post not found")
}

func (emptyPosts) Update(context.Context, int64, posts.UpdatePostRequest) (*posts.Post, error) {
	return nil, httpx.NotFoundError("post not found")
}

func (emptyPosts) Delete(context.Context, int64) error {
	return httpx.NotFoundError("post not found")
}

func (emptyPosts) AuthorID(context.Context, int64) (int64, error) {
	return 0, httpx.NotFoundError("post not found")
}

type emptyComments struct{}

func (emptyComments) ListByPost(context.Context, int64, int, int) ([]comments.Comment, shared.Meta, error) {
	return nil, shared.Meta{}, httpx.NotFoundError("post not found")
}

func (emptyComments) Get(context.Context, int64) (*comments.Comment, error) {
	return nil, httpx.NotFoundError("comment not found")
}

func (emptyComments) Create(context.Context, int64, comments.CreateCommentRequest) (*comments.Comment, error) {
	return nil, httpx.NotFoundError("post not found")
}

func (emptyComments) Update(context.Context, int64, comments.UpdateCommentRequest) (*comments.Comment, error) {
	return nil, httpx.NotFoundError("comment not found")
}

func (emptyComments) Delete(context.Context, int64) error {
	return httpx.NotFoundError("comment not found")
}

func (emptyComments) AuthorID(context.Context, int64) (int64, error) {
	return 0, httpx.NotFoundError("comment not found")
}

func newTestRouter(t *testing.T, generalLimit int) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &app.Config{
		AppEnv:            "test",
		AppRequestTimeout: 30 * time.Second,
		FrontendURL:       "http://localhost:3000",
	}

	issuer := auth.NewTokenIssuer("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	authService := auth.NewService(emptyUsers{}, issuer)
	mw := auth.Middleware{Tokens: issuer, Service: authService, Logger: logger}

	generalPolicy := ratelimit.GeneralPolicy(generalLimit, time.Minute)
	authPolicy := ratelimit.AuthPolicy(5, 15*time.Minute)

	return app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthHandler:     auth.NewHandler(logger, authService, mw, ratelimit.Middleware(ratelimit.NewMemoryStore(authPolicy), authPolicy, logger)),
		PostsHandler:    posts.NewHandler(logger, emptyPosts{}, mw),
		CommentsHandler: comments.NewHandler(logger, emptyComments{}, mw),
		GeneralLimit:    ratelimit.Middleware(ratelimit.NewMemoryStore(generalPolicy), generalPolicy, logger),
		StartedAt:       time.Now(),
	})
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, 100)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var body struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
		Uptime    string `json:"uptime"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "OK" {
		t.Fatalf("unexpected status %q", body.Status)
	}
	if body.Timestamp == "" || body.Uptime == "" {
		t.Fatalf("incomplete payload %+v", body)
	}
}

func TestUnknownRouteFallback(t *testing.T) {
	router := newTestRouter(t, 100)

	req := httptest.NewRequest(http.MethodGet, "/nope/nothing", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		Path    string `json:"path"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Error != "route not found" || body.Path != "/nope/nothing" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestGeneralRateLimitCoversAPI(t *testing.T) {
	router := newTestRouter(t, 2)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.RemoteAddr = "10.0.0.1:52100"
		res := httptest.NewRecorder()
		router.ServeHTTP(res, req)
		if res.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, res.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.RemoteAddr = "10.0.0.1:52100"
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", res.Code)
	}
	if res.Header().Get("Retry-After") == "" {
		t.Fatal("expected a Retry-After header")
	}

	// Health stays reachable after the API allowance is spent.
	health := httptest.NewRequest(http.MethodGet, "/health", nil)
	health.RemoteAddr = "10.0.0.1:52100"
	healthRes := httptest.NewRecorder()
	router.ServeHTTP(healthRes, health)
	if healthRes.Code != http.StatusOK {
		t.Fatalf("expected 200 for health, got %d", healthRes.Code)
	}
}
