package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"testing"

	"vows-and-wishes/pkg/apiclient"

	"github.com/sirupsen/logrus"
)

type fakeAPI struct {
	validToken string
	loggedOut  []string
	logoutErr  error
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*apiclient.AuthResult, error) {
	if password != "secret" {
		return nil, &apiclient.APIError{StatusCode: http.StatusUnauthorized, Detail: "Invalid credentials"}
	}
	return &apiclient.AuthResult{Token: f.validToken, User: &apiclient.User{ID: "u1", Email: email}}, nil
}

func (f *fakeAPI) Register(_ context.Context, req apiclient.RegisterRequest) (*apiclient.AuthResult, error) {
	return &apiclient.AuthResult{Token: f.validToken, User: &apiclient.User{ID: "u2", Name: req.Name, Email: req.Email}}, nil
}

func (f *fakeAPI) Profile(_ context.Context, token string) (*apiclient.User, error) {
	if token != f.validToken {
		return nil, &apiclient.APIError{StatusCode: http.StatusUnauthorized, Detail: "Invalid or expired token"}
	}
	return &apiclient.User{ID: "u1", Name: "Asha", Email: "asha@example.com"}, nil
}

func (f *fakeAPI) Logout(_ context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	return f.logoutErr
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestInit_RestoresPersistedToken(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Save("good"); err != nil {
		t.Fatalf("save: %v", err)
	}

	s := New(&fakeAPI{validToken: "good"}, store, quietLogger())
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	user, ok := s.User()
	if !ok || user.Name != "Asha" || !s.IsAuthenticated() {
		t.Fatalf("expected restored session, got %+v", user)
	}
}

func TestInit_DropsRejectedToken(t *testing.T) {
	store := &MemoryStore{}
	store.Save("stale")

	s := New(&fakeAPI{validToken: "good"}, store, quietLogger())
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if s.IsAuthenticated() || s.Token() != "" {
		t.Fatalf("expected stale token to be cleared")
	}
	if token, _ := store.Load(); token != "" {
		t.Fatalf("expected store to be cleared, got %q", token)
	}
}

func TestInit_EmptyStore(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "missing", "session.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	s := New(&fakeAPI{validToken: "good"}, store, quietLogger())
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if s.IsAuthenticated() {
		t.Fatalf("expected guest session")
	}
}

func TestLoginLogout(t *testing.T) {
	api := &fakeAPI{validToken: "good", logoutErr: errors.New("network down")}
	store := &MemoryStore{}
	s := New(api, store, quietLogger())
	ctx := context.Background()

	if _, err := s.Login(ctx, "asha@example.com", "wrong"); apiclient.DetailOr(err, "") != "Invalid credentials" {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if s.IsAuthenticated() {
		t.Fatalf("failed login must not authenticate")
	}

	if _, err := s.Login(ctx, "asha@example.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if token, _ := store.Load(); token != "good" {
		t.Fatalf("expected token persisted, got %q", token)
	}

	// Revocation failure still logs the user out locally.
	s.Logout(ctx)
	if len(api.loggedOut) != 1 || api.loggedOut[0] != "good" {
		t.Fatalf("expected server logout with token, got %v", api.loggedOut)
	}
	if s.IsAuthenticated() {
		t.Fatalf("expected session cleared")
	}
	if token, _ := store.Load(); token != "" {
		t.Fatalf("expected store cleared, got %q", token)
	}
}

func TestRegister_FallsBackToAuthUser(t *testing.T) {
	api := &fakeAPI{validToken: "other"}
	s := New(&registerOnly{api}, &MemoryStore{}, quietLogger())

	user, err := s.Register(context.Background(), apiclient.RegisterRequest{Name: "Ravi", Email: "ravi@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Name != "Ravi" {
		t.Fatalf("expected user from register response, got %+v", user)
	}
}

// registerOnly fails every profile lookup
type registerOnly struct {
	*fakeAPI
}

func (r *registerOnly) Profile(context.Context, string) (*apiclient.User, error) {
	return nil, errors.New("profile unavailable")
}
