// Package session holds the authenticated user of the running client and
// persists it across restarts in a durable key-value store.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/garnizeh/jobboard/internal/apperr"
	"github.com/garnizeh/jobboard/internal/auth"
	"github.com/garnizeh/jobboard/internal/lifecycle"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// Storage keys.
const (
	KeyToken = "authToken"
	KeyUser  = "userData"
)

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	User            *models.SessionUser
	Token           string
	IsAuthenticated bool
	Loading         bool
	Error           string
}

// Store is the session capability. It is created once per client and passed
// to whoever needs the current user.
type Store struct {
	kv     repository.KVRepo
	creds  *auth.CredentialService
	secret []byte
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	status lifecycle.Status
	user   *models.SessionUser
	token  string
}

func NewStore(kv repository.KVRepo, creds *auth.CredentialService, secret string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		kv:     kv,
		creds:  creds,
		secret: []byte(secret),
		logger: logger,
		now:    time.Now,
	}
}

// Boot restores the session saved by a previous run. A missing token or an
// unreadable user snapshot leaves the store unauthenticated; neither is an
// error.
func (s *Store) Boot(ctx context.Context) error {
	token, hasToken, err := s.kv.GetValue(ctx, KeyToken)
	if err != nil {
		return fmt.Errorf("boot: read token: %w", err)
	}
	raw, hasUser, err := s.kv.GetValue(ctx, KeyUser)
	if err != nil {
		return fmt.Errorf("boot: read user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Reset()
	s.user, s.token = nil, ""

	if !hasToken || token == "" || !hasUser {
		return nil
	}
	var u models.SessionUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.logger.Warn("boot: discarding unreadable user snapshot", slog.Any("err", err))
		return nil
	}
	s.user, s.token = &u, token
	s.logger.Info("boot: session restored", slog.String("user_id", u.ID))
	return nil
}

// Login checks the credentials remotely and, on success, persists and holds
// the new session. The role is always jobseeker because the remote record
// does not carry one.
func (s *Store) Login(ctx context.Context, email, password string) (*models.SessionUser, error) {
	return sessionUser(lifecycle.Run(ctx, &s.mu, &s.status,
		func(ctx context.Context) (session, error) {
			u, err := s.creds.Login(ctx, email, password)
			if err != nil {
				return session{}, err
			}
			return s.persist(ctx, u, models.RoleJobSeeker, auth.MsgLoginFailed, apperr.ErrLoginFailed)
		},
		lifecycle.Handlers[session]{
			Name:      "auth/login",
			Fallback:  auth.MsgLoginFailed,
			Fulfilled: s.set,
		}))
}

// Register creates the remote user and signs it in. The role comes from the
// form and defaults to jobseeker.
func (s *Store) Register(ctx context.Context, form models.RegisterForm) (*models.SessionUser, error) {
	role := form.Role
	if role == "" {
		role = models.RoleJobSeeker
	}
	return sessionUser(lifecycle.Run(ctx, &s.mu, &s.status,
		func(ctx context.Context) (session, error) {
			u, err := s.creds.Register(ctx, form)
			if err != nil {
				return session{}, err
			}
			return s.persist(ctx, u, role, auth.MsgRegisterFailed, apperr.ErrRegisterFailed)
		},
		lifecycle.Handlers[session]{
			Name:      "auth/register",
			Fallback:  auth.MsgRegisterFailed,
			Fulfilled: s.set,
		}))
}

// Logout removes both stored keys and drops the in-memory session.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.kv.DeleteValues(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.mu.Lock()
	s.user, s.token = nil, ""
	s.status.Reset()
	s.mu.Unlock()
	return nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Token:           s.token,
		IsAuthenticated: s.user != nil && s.token != "",
		Loading:         s.status.Loading,
		Error:           s.status.Error,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// UserID returns the id of the signed-in user.
func (s *Store) UserID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil || s.token == "" {
		return "", false
	}
	return s.user.ID, true
}

func (s *Store) ClearError() {
	s.mu.Lock()
	s.status.ClearError()
	s.mu.Unlock()
}

type session struct {
	u     *models.SessionUser
	token string
}

func sessionUser(ss session, err error) (*models.SessionUser, error) {
	if err != nil {
		return nil, err
	}
	u := *ss.u
	return &u, nil
}

func (s *Store) persist(ctx context.Context, u *models.User, role models.Role, msg string, kind error) (session, error) {
	ts := s.now().UTC()
	su := &models.SessionUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      role,
		CreatedAt: ts.Format(time.RFC3339Nano),
		UpdatedAt: ts.Format(time.RFC3339Nano),
	}

	token, err := mintToken(s.secret, su.ID, su.Email, ts)
	if err != nil {
		return session{}, apperr.New(kind, msg, err)
	}
	b, err := json.Marshal(su)
	if err != nil {
		return session{}, apperr.New(kind, msg, err)
	}
	if err := s.kv.SetValue(ctx, KeyUser, string(b)); err != nil {
		s.logger.Error("session: persist user", slog.Any("err", err))
		return session{}, apperr.New(kind, msg, err)
	}
	if err := s.kv.SetValue(ctx, KeyToken, token); err != nil {
		s.logger.Error("session: persist token", slog.Any("err", err))
		// The keys are only meaningful together.
		if derr := s.kv.DeleteValues(ctx, KeyUser, KeyToken); derr != nil {
			s.logger.Error("session: drop unpaired user", slog.Any("err", derr))
		}
		return session{}, apperr.New(kind, msg, err)
	}
	return session{u: su, token: token}, nil
}

func (s *Store) set(ss session) {
	s.user, s.token = ss.u, ss.token
}
