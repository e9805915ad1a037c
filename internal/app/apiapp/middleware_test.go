package apiapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	redrepo "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/repo/redis"
	authsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/auth"
)

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc.def.ghi", "abc.def.ghi", true},
		{"Bearer ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"", "", false},
		{"abc.def.ghi", "", false},
	}

	for _, tc := range cases {
		token, ok := extractBearerToken(tc.header)
		if ok != tc.ok || token != tc.token {
			t.Fatalf("extractBearerToken(%q) = %q, %v; want %q, %v", tc.header, token, ok, tc.token, tc.ok)
		}
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	svc := newAuthServiceForTest(t)
	mw := AuthMiddleware(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called without a token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareSetsIdentity(t *testing.T) {
	svc := newAuthServiceForTest(t)

	res, err := svc.Signup(context.Background(), "creator@example.com", "s3cret-pass", "Creator")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	mw := AuthMiddleware(svc, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+res.AccessToken)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok {
			t.Fatalf("identity missing in context")
		}
		if identity.UserID != res.Me.ID {
			t.Fatalf("unexpected user id: got %d want %d", identity.UserID, res.Me.ID)
		}
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func newAuthServiceForTest(t *testing.T) *authsvc.Service {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	jwt := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	return authsvc.NewService(jwt, newMemoryUserStore(), redrepo.NewSessionRepo(client), 30*24*time.Hour)
}

type memoryUserStore struct {
	byEmail map[string]authsvc.UserAccount
	nextID  int64
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{byEmail: map[string]authsvc.UserAccount{}, nextID: 1}
}

func (s *memoryUserStore) Create(_ context.Context, email, passwordHash, displayName string) (authsvc.UserAccount, error) {
	if _, ok := s.byEmail[email]; ok {
		return authsvc.UserAccount{}, authsvc.ErrEmailTaken
	}
	account := authsvc.UserAccount{
		ID:           s.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		Role:         "user",
		Tier:         "free",
	}
	s.nextID++
	s.byEmail[email] = account
	return account, nil
}

func (s *memoryUserStore) FindByEmail(_ context.Context, email string) (authsvc.UserAccount, error) {
	account, ok := s.byEmail[email]
	if !ok {
		return authsvc.UserAccount{}, authsvc.ErrUserNotFound
	}
	return account, nil
}

func (s *memoryUserStore) GetByID(_ context.Context, userID int64) (authsvc.UserAccount, error) {
	for _, account := range s.byEmail {
		if account.ID == userID {
			return account, nil
		}
	}
	return authsvc.UserAccount{}, authsvc.ErrUserNotFound
}
