package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/garnizeh/jobboard/internal/apperr"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/recordstore"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// User-facing messages.
const (
	MsgNoAccount       = "No account found with this email address"
	MsgInvalidPassword = "Invalid password"
	MsgLoginFailed     = "Login failed. Please try again."
	MsgRegisterFailed  = "Registration failed. Please try again."
)

// CredentialService matches credentials against the remote user collection.
// It has no server-side counterpart: lookups scan every user record and the
// stored password is compared as plain text.
type CredentialService struct {
	gw     repository.RecordGateway
	logger *slog.Logger
	now    func() time.Time
}

func NewCredentialService(gw repository.RecordGateway, logger *slog.Logger) *CredentialService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialService{gw: gw, logger: logger, now: time.Now}
}

// Login finds the user by case-insensitive email and compares the password.
// A missing account and a wrong password are reported with different messages.
func (s *CredentialService) Login(ctx context.Context, email, password string) (*models.User, error) {
	var users []models.User
	if err := s.gw.List(ctx, recordstore.Users, &users); err != nil {
		s.logger.Error("login: list users", slog.Any("err", err))
		return nil, apperr.New(apperr.ErrLoginFailed, MsgLoginFailed, err)
	}

	for i := range users {
		if !strings.EqualFold(users[i].Email, email) {
			continue
		}
		if users[i].Password != password {
			return nil, apperr.New(apperr.ErrInvalidCredential, MsgInvalidPassword, nil)
		}
		u := users[i]
		return &u, nil
	}

	return nil, apperr.New(apperr.ErrNotFound, MsgNoAccount, nil)
}

// Register creates the user record as submitted. Duplicate emails are not
// checked; whatever the remote store accepts is kept.
func (s *CredentialService) Register(ctx context.Context, form models.RegisterForm) (*models.User, error) {
	in := models.User{
		FirstName:   form.FirstName,
		LastName:    form.LastName,
		Email:       form.Email,
		PhoneNumber: form.PhoneNumber,
		Gender:      form.Gender,
		Password:    form.Password,
		DoB:         s.now().UTC().Format(time.RFC3339Nano),
	}

	var out models.User
	if err := s.gw.Create(ctx, recordstore.Users, in, &out); err != nil {
		s.logger.Error("register: create user", slog.Any("err", err))
		return nil, apperr.New(apperr.ErrRegisterFailed, MsgRegisterFailed, err)
	}

	return &out, nil
}
