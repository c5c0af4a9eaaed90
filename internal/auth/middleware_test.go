package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/plumeblog/plume/internal/platform/httpx"
)

type fakeRepo struct {
	usersByID map[int64]*User
}

func (f *fakeRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range f.usersByID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, httpx.NotFoundError("user not found")
}

func (f *fakeRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	if u, ok := f.usersByID[id]; ok {
		return u, nil
	}
	return nil, httpx.NotFoundError("user not found")
}

func (f *fakeRepo) CreateUser(ctx context.Context, email, passwordHash string, roleID int64) (*User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRepo) FindRole(ctx context.Context, id int64) (*Role, error) {
	return nil, httpx.NotFoundError("role not found")
}

func (f *fakeRepo) FindRoleByName(ctx context.Context, name string) (*Role, error) {
	return nil, httpx.NotFoundError("role not found")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMiddleware(users ...*User) (Middleware, *TokenIssuer) {
	repo := &fakeRepo{usersByID: map[int64]*User{}}
	for _, u := range users {
		repo.usersByID[u.ID] = u
	}
	issuer := NewTokenIssuer("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	mw := Middleware{
		Tokens:  issuer,
		Service: NewService(repo, issuer),
		Logger:  testLogger(),
	}
	return mw, issuer
}

func okHandler(t *testing.T, captured *Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				t.Fatal("expected principal in context")
			}
			*captured = p
		}
		w.WriteHeader(http.StatusOK)
	})
}

func errorBody(t *testing.T, res *httptest.ResponseRecorder) httpx.ErrorEnvelope {
	t.Helper()
	var body httpx.ErrorEnvelope
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestAuthenticateMissingToken(t *testing.T) {
	mw, _ := newTestMiddleware()

	for _, header := range []string{"", "Basic xyz", "bearer lowercase"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		res := httptest.NewRecorder()
		mw.Authenticate(okHandler(t, nil)).ServeHTTP(res, req)

		if res.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, res.Code)
		}
		if body := errorBody(t, res); body.Error != "access token required" {
			t.Fatalf("header %q: unexpected error %q", header, body.Error)
		}
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	mw, _ := newTestMiddleware()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	res := httptest.NewRecorder()
	mw.Authenticate(okHandler(t, nil)).ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if body := errorBody(t, res); body.Error != "invalid token" {
		t.Fatalf("unexpected error %q", body.Error)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	user := &User{ID: 1, Email: "reader@example.com", Role: Role{ID: 2, Name: "user"}}
	mw, issuer := newTestMiddleware(user)

	raw, err := issuer.Issue(user.ID, user.Email)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	res := httptest.NewRecorder()
	mw.Authenticate(okHandler(t, nil)).ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if body := errorBody(t, res); body.Error != "token expired" {
		t.Fatalf("unexpected error %q", body.Error)
	}
}

func TestAuthenticateDeletedUser(t *testing.T) {
	mw, issuer := newTestMiddleware()

	raw, err := issuer.Issue(99, "gone@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	res := httptest.NewRecorder()
	mw.Authenticate(okHandler(t, nil)).ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if body := errorBody(t, res); body.Error != "user not found" {
		t.Fatalf("unexpected error %q", body.Error)
	}
}

func TestAuthenticateAttachesPrincipal(t *testing.T) {
	user := &User{ID: 5, Email: "writer@example.com", Role: Role{ID: 1, Name: "admin"}}
	mw, issuer := newTestMiddleware(user)

	raw, err := issuer.Issue(user.ID, user.Email)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var principal Principal
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	res := httptest.NewRecorder()
	mw.Authenticate(okHandler(t, &principal)).ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if principal.ID != 5 || principal.Email != "writer@example.com" || principal.Role != "admin" {
		t.Fatalf("unexpected principal %+v", principal)
	}
}

func TestRequireRole(t *testing.T) {
	mw, _ := newTestMiddleware()

	cases := []struct {
		name      string
		principal *Principal
		role      string
		status    int
	}{
		{name: "no principal", role: "user", status: http.StatusUnauthorized},
		{name: "role mismatch", principal: &Principal{ID: 1, Role: "user"}, role: "editor", status: http.StatusForbidden},
		{name: "role match", principal: &Principal{ID: 1, Role: "editor"}, role: "editor", status: http.StatusOK},
		{name: "admin override", principal: &Principal{ID: 1, Role: "admin"}, role: "editor", status: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.principal != nil {
				req = req.WithContext(ContextWithPrincipal(req.Context(), *tc.principal))
			}
			res := httptest.NewRecorder()
			mw.RequireRole(tc.role)(okHandler(t, nil)).ServeHTTP(res, req)
			if res.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, res.Code)
			}
		})
	}
}

func TestRequireOwnership(t *testing.T) {
	mw, _ := newTestMiddleware()

	resolver := func(ownerID int64, err error) OwnerResolver {
		return func(*http.Request) (int64, error) { return ownerID, err }
	}

	cases := []struct {
		name      string
		principal *Principal
		resolve   OwnerResolver
		status    int
		message   string
	}{
		{name: "no principal", resolve: resolver(1, nil), status: http.StatusUnauthorized, message: "authentication required"},
		{name: "owner passes", principal: &Principal{ID: 1, Role: "user"}, resolve: resolver(1, nil), status: http.StatusOK},
		{name: "admin passes", principal: &Principal{ID: 9, Role: "admin"}, resolve: resolver(1, nil), status: http.StatusOK},
		{name: "other user denied", principal: &Principal{ID: 2, Role: "user"}, resolve: resolver(1, nil), status: http.StatusForbidden, message: "you can only modify your own content"},
		{name: "missing resource denied", principal: &Principal{ID: 2, Role: "user"}, resolve: resolver(0, httpx.NotFoundError("post not found")), status: http.StatusForbidden, message: "you can only modify your own content"},
		{name: "bad id rejected", principal: &Principal{ID: 2, Role: "user"}, resolve: resolver(0, httpx.ValidationError("invalid post id", nil)), status: http.StatusBadRequest, message: "invalid post id"},
		{name: "resolver failure reported", principal: &Principal{ID: 2, Role: "user"}, resolve: resolver(0, errors.New("connection reset")), status: http.StatusInternalServerError, message: "error verifying permissions"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/", nil)
			if tc.principal != nil {
				req = req.WithContext(ContextWithPrincipal(req.Context(), *tc.principal))
			}
			res := httptest.NewRecorder()
			mw.RequireOwnership(tc.resolve)(okHandler(t, nil)).ServeHTTP(res, req)
			if res.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, res.Code)
			}
			if tc.message != "" {
				if body := errorBody(t, res); body.Error != tc.message {
					t.Fatalf("unexpected error %q", body.Error)
				}
			}
		})
	}
}
