// Package app assembles the client features behind one capability object.
// There is no package-level session: whoever holds an *App holds the session.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/garnizeh/jobboard/internal/applications"
	"github.com/garnizeh/jobboard/internal/auth"
	"github.com/garnizeh/jobboard/internal/listing"
	"github.com/garnizeh/jobboard/internal/session"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

var (
	// ErrNotAuthenticated is returned by operations that need a signed-in user.
	ErrNotAuthenticated = errors.New("please log in first")
	ErrEmployerOnly     = errors.New("only employers can post jobs")
)

type Options struct {
	TokenSecret string
	PageSize    int
	Logger      *slog.Logger
}

type App struct {
	Session      *session.Store
	Applications *applications.Engine
	Jobs         *listing.Board

	logger *slog.Logger
}

func New(gw repository.RecordGateway, kv repository.KVRepo, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	creds := auth.NewCredentialService(gw, logger)
	return &App{
		Session:      session.NewStore(kv, creds, opts.TokenSecret, logger),
		Applications: applications.NewEngine(gw, logger),
		Jobs:         listing.NewBoard(gw, opts.PageSize, logger),
		logger:       logger,
	}
}

// Boot restores the stored session and, when one exists, loads the user's
// applications. A failed applications fetch is left in the engine state and
// does not fail the boot.
func (a *App) Boot(ctx context.Context) error {
	if err := a.Session.Boot(ctx); err != nil {
		return err
	}
	if id, ok := a.Session.UserID(); ok {
		if _, err := a.Applications.FetchUserApplications(ctx, id); err != nil {
			a.logger.Warn("boot: applications not loaded", slog.String("user_id", id), slog.Any("err", err))
		}
	}
	return nil
}

func (a *App) Login(ctx context.Context, email, password string) (*models.SessionUser, error) {
	u, err := a.Session.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	a.loadApplications(ctx, u.ID)
	return u, nil
}

func (a *App) Register(ctx context.Context, form models.RegisterForm) (*models.SessionUser, error) {
	u, err := a.Session.Register(ctx, form)
	if err != nil {
		return nil, err
	}
	a.loadApplications(ctx, u.ID)
	return u, nil
}

// Logout ends the session and drops the applications of the previous user.
func (a *App) Logout(ctx context.Context) error {
	if err := a.Session.Logout(ctx); err != nil {
		return err
	}
	a.Applications.Reset()
	a.Jobs.ClearCurrentJob()
	return nil
}

// Apply applies the signed-in user to job jobID, using the job record for
// the denormalised title and company.
func (a *App) Apply(ctx context.Context, jobID string) (models.Application, error) {
	userID, ok := a.Session.UserID()
	if !ok {
		return models.Application{}, ErrNotAuthenticated
	}
	job, err := a.Jobs.FetchJobByID(ctx, jobID)
	if err != nil {
		return models.Application{}, err
	}
	return a.Applications.Apply(ctx, userID, job.ID, job.Title, job.Company)
}

func (a *App) RefreshApplications(ctx context.Context) ([]models.Application, error) {
	userID, ok := a.Session.UserID()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return a.Applications.FetchUserApplications(ctx, userID)
}

func (a *App) UpdateStatus(ctx context.Context, jobID string, status models.ApplicationStatus) error {
	userID, ok := a.Session.UserID()
	if !ok {
		return ErrNotAuthenticated
	}
	return a.Applications.UpdateApplicationStatus(ctx, userID, jobID, status)
}

func (a *App) HasApplied(ctx context.Context, jobID string) (bool, error) {
	userID, ok := a.Session.UserID()
	if !ok {
		return false, ErrNotAuthenticated
	}
	return a.Applications.HasApplied(ctx, userID, jobID)
}

// PostJob creates a job posting. Only employers may post.
func (a *App) PostJob(ctx context.Context, j models.Job) (models.Job, error) {
	snap := a.Session.Snapshot()
	if !snap.IsAuthenticated {
		return models.Job{}, ErrNotAuthenticated
	}
	if snap.User.Role != models.RoleEmployer {
		return models.Job{}, ErrEmployerOnly
	}
	return a.Jobs.CreateJob(ctx, j)
}

func (a *App) loadApplications(ctx context.Context, userID string) {
	a.Applications.Reset()
	if _, err := a.Applications.FetchUserApplications(ctx, userID); err != nil {
		a.logger.Warn("applications not loaded", slog.String("user_id", userID), slog.Any("err", err))
	}
}
