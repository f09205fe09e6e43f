package session

import (
	"context"
	"sync"

	"vows-and-wishes/pkg/apiclient"

	"github.com/sirupsen/logrus"
)

// API is the part of the backend a session needs
type API interface {
	Login(ctx context.Context, email, password string) (*apiclient.AuthResult, error)
	Register(ctx context.Context, req apiclient.RegisterRequest) (*apiclient.AuthResult, error)
	Profile(ctx context.Context, token string) (*apiclient.User, error)
	Logout(ctx context.Context, token string) error
}

// Session is the process-wide authentication state. It is created once,
// hydrated with Init and torn down with Logout.
type Session struct {
	api   API
	store Store
	log   *logrus.Logger

	mu    sync.RWMutex
	token string
	user  *apiclient.User
}

func New(api API, store Store, log *logrus.Logger) *Session {
	return &Session{
		api:   api,
		store: store,
		log:   log,
	}
}

// Init restores a persisted token and loads its profile. A token the
// backend no longer accepts is dropped from memory and from the store.
func (s *Session) Init(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	user, err := s.api.Profile(ctx, token)
	if err != nil {
		s.log.Warnf("Failed to restore session: %v", err)
		s.reset()
		return nil
	}

	s.set(token, user)
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) (*apiclient.User, error) {
	auth, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, auth)
}

func (s *Session) Register(ctx context.Context, req apiclient.RegisterRequest) (*apiclient.User, error) {
	auth, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, auth)
}

func (s *Session) establish(ctx context.Context, auth *apiclient.AuthResult) (*apiclient.User, error) {
	user, err := s.api.Profile(ctx, auth.Token)
	if err != nil {
		s.log.Warnf("Failed to load profile, using login response: %v", err)
		user = auth.User
	}

	if err := s.store.Save(auth.Token); err != nil {
		s.log.Warnf("Failed to persist session: %v", err)
	}
	s.set(auth.Token, user)
	return user, nil
}

// Logout revokes the token on the backend when possible and always clears local state
func (s *Session) Logout(ctx context.Context) {
	token := s.Token()
	if token != "" {
		if err := s.api.Logout(ctx, token); err != nil {
			s.log.Warnf("Failed to revoke token on logout: %v", err)
		}
	}
	s.reset()
}

func (s *Session) set(token string, user *apiclient.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
}

func (s *Session) reset() {
	s.set("", nil)
	if err := s.store.Clear(); err != nil {
		s.log.Warnf("Failed to clear session store: %v", err)
	}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user
func (s *Session) User() (apiclient.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return apiclient.User{}, false
	}
	return *s.user, true
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}
