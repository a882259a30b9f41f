// Package applications keeps the local view of a user's job applications in
// sync with the applications array embedded in the remote user record.
//
// The remote record is the source of truth. Locally the engine holds the
// applications list and the set of applied job ids derived from it; both are
// only ever changed together by the mutators at the bottom of this file.
package applications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/garnizeh/jobboard/internal/apperr"
	"github.com/garnizeh/jobboard/internal/lifecycle"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/recordstore"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// User-facing messages.
const (
	MsgUserNotFound               = "User not found"
	MsgAlreadyApplied             = "You have already applied to this job"
	MsgApplyFailed                = "Failed to submit application. Please try again."
	MsgFetchFailed                = "Failed to fetch applications. Please try again."
	MsgCheckFailed                = "Failed to check application status."
	MsgUserOrApplicationsNotFound = "User or applications not found"
	MsgApplicationNotFound        = "Application not found"
	MsgUpdateFailed               = "Failed to update application status."
	MsgInvalidStatus              = "Invalid application status"
)

// CollectionState describes how far the local list reflects the remote one.
// Only FetchUserApplications moves it through Loading, Ready and Error; a
// failed Apply, HasApplied or status update leaves it alone because the list
// itself is unchanged. Reset returns it to Empty.
type CollectionState int

const (
	Empty CollectionState = iota
	Loading
	Ready
	Error
)

func (s CollectionState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return "empty"
	}
}

// Snapshot is a consistent copy of the engine state.
type Snapshot struct {
	// State follows fetches only. The Loading and Error fields report the
	// last operation of any kind.
	State         CollectionState
	Loading       bool
	Error         string
	Applications  []models.Application
	AppliedJobIDs []string
}

// Engine owns the applications list and the applied job id set for one
// session. All methods are safe for concurrent use.
//
// Writes to the remote user record are read-modify-write with a full-record
// PUT and no version check. Two writers touching the same user between one's
// read and its write lose the earlier write. The remote store offers no
// conditional update, so the race is accepted.
type Engine struct {
	gw     repository.RecordGateway
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	status  lifecycle.Status
	state   CollectionState
	apps    []models.Application
	applied map[string]struct{}
}

func NewEngine(gw repository.RecordGateway, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		gw:      gw,
		logger:  logger,
		now:     time.Now,
		applied: make(map[string]struct{}),
	}
}

// SetClock replaces the time source used for appliedAt stamps.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	e.now = now
	e.mu.Unlock()
}

// Apply records an application for jobID on the user's remote record and, once
// the write succeeded, on the local state. The returned entry is the one that
// was stored remotely.
func (e *Engine) Apply(ctx context.Context, userID, jobID, jobTitle, company string) (models.Application, error) {
	return lifecycle.Run(ctx, &e.mu, &e.status,
		func(ctx context.Context) (models.Application, error) {
			return e.applyRemote(ctx, userID, jobID, jobTitle, company)
		},
		lifecycle.Handlers[models.Application]{
			Name:      "applications/apply",
			Fallback:  MsgApplyFailed,
			Fulfilled: e.addApplication,
		})
}

func (e *Engine) applyRemote(ctx context.Context, userID, jobID, jobTitle, company string) (models.Application, error) {
	var empty models.Application

	rec, err := e.loadUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return empty, apperr.New(apperr.ErrUserNotFound, MsgUserNotFound, err)
		}
		e.logger.Error("apply: get user", slog.String("user_id", userID), slog.Any("err", err))
		return empty, apperr.New(apperr.ErrApplyFailed, MsgApplyFailed, err)
	}

	idx, err := rec.find(jobID)
	if err != nil {
		e.logger.Error("apply: read applications", slog.String("user_id", userID), slog.Any("err", err))
		return empty, apperr.New(apperr.ErrApplyFailed, MsgApplyFailed, err)
	}
	if idx >= 0 {
		return empty, apperr.New(apperr.ErrAlreadyApplied, MsgAlreadyApplied, nil)
	}

	entry := models.Application{
		JobID:     jobID,
		Status:    models.StatusApplied,
		AppliedAt: e.timestamp(),
		JobTitle:  jobTitle,
		Company:   company,
		Notes:     models.DefaultApplicationNote,
	}
	if err := rec.appendApplication(entry); err != nil {
		return empty, apperr.New(apperr.ErrApplyFailed, MsgApplyFailed, err)
	}

	// The response body is not needed: a 2xx means the write happened.
	if err := e.gw.Replace(ctx, recordstore.Users, userID, rec, nil); err != nil {
		e.logger.Error("apply: replace user", slog.String("user_id", userID), slog.String("job_id", jobID), slog.Any("err", err))
		return empty, apperr.New(apperr.ErrApplyFailed, MsgApplyFailed, err)
	}

	e.logger.Info("apply: application stored", slog.String("user_id", userID), slog.String("job_id", jobID))
	return entry, nil
}

// FetchUserApplications replaces the local list with the remote one and
// rebuilds the applied set from it. A missing user or applications field
// yields an empty list. On failure the local state is emptied.
func (e *Engine) FetchUserApplications(ctx context.Context, userID string) ([]models.Application, error) {
	return lifecycle.Run(ctx, &e.mu, &e.status,
		func(ctx context.Context) ([]models.Application, error) {
			rec, err := e.loadUser(ctx, userID)
			if err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					return []models.Application{}, nil
				}
				e.logger.Error("fetch applications: get user", slog.String("user_id", userID), slog.Any("err", err))
				return nil, apperr.New(apperr.ErrFetchFailed, MsgFetchFailed, err)
			}
			apps, err := rec.applications()
			if err != nil {
				e.logger.Error("fetch applications: decode", slog.String("user_id", userID), slog.Any("err", err))
				return nil, apperr.New(apperr.ErrFetchFailed, MsgFetchFailed, err)
			}
			return apps, nil
		},
		lifecycle.Handlers[[]models.Application]{
			Name:     "applications/fetch",
			Fallback: MsgFetchFailed,
			Pending:  func() { e.state = Loading },
			Fulfilled: func(list []models.Application) {
				e.replaceApplications(list)
				e.state = Ready
			},
			Rejected: func(error) {
				e.replaceApplications(nil)
				e.state = Error
			},
		})
}

// HasApplied asks the remote store whether the user applied to jobID. It does
// not touch the local list or set.
func (e *Engine) HasApplied(ctx context.Context, userID, jobID string) (bool, error) {
	return lifecycle.Run(ctx, &e.mu, &e.status,
		func(ctx context.Context) (bool, error) {
			rec, err := e.loadUser(ctx, userID)
			if err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					return false, nil
				}
				e.logger.Error("has applied: get user", slog.String("user_id", userID), slog.Any("err", err))
				return false, apperr.New(apperr.ErrCheckFailed, MsgCheckFailed, err)
			}
			idx, err := rec.find(jobID)
			if err != nil {
				e.logger.Error("has applied: read applications", slog.String("user_id", userID), slog.Any("err", err))
				return false, apperr.New(apperr.ErrCheckFailed, MsgCheckFailed, err)
			}
			return idx >= 0, nil
		},
		lifecycle.Handlers[bool]{
			Name:     "applications/check",
			Fallback: MsgCheckFailed,
		})
}

// UpdateApplicationStatus changes the status of one application remotely and
// then locally. No other field is touched, and the applied set is unaffected.
func (e *Engine) UpdateApplicationStatus(ctx context.Context, userID, jobID string, status models.ApplicationStatus) error {
	_, err := lifecycle.Run(ctx, &e.mu, &e.status,
		func(ctx context.Context) (models.ApplicationStatus, error) {
			if !status.Valid() {
				return "", apperr.New(apperr.ErrInvalidStatus, MsgInvalidStatus, nil)
			}

			rec, err := e.loadUser(ctx, userID)
			if err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					return "", apperr.New(apperr.ErrUserNotFound, MsgUserOrApplicationsNotFound, err)
				}
				e.logger.Error("update status: get user", slog.String("user_id", userID), slog.Any("err", err))
				return "", apperr.New(apperr.ErrUpdateFailed, MsgUpdateFailed, err)
			}
			if len(rec.apps) == 0 {
				return "", apperr.New(apperr.ErrApplicationNotFound, MsgUserOrApplicationsNotFound, nil)
			}

			idx, err := rec.find(jobID)
			if err != nil {
				e.logger.Error("update status: read applications", slog.String("user_id", userID), slog.Any("err", err))
				return "", apperr.New(apperr.ErrUpdateFailed, MsgUpdateFailed, err)
			}
			if idx < 0 {
				return "", apperr.New(apperr.ErrApplicationNotFound, MsgApplicationNotFound, nil)
			}
			if err := rec.setStatus(idx, status); err != nil {
				return "", apperr.New(apperr.ErrUpdateFailed, MsgUpdateFailed, err)
			}

			if err := e.gw.Replace(ctx, recordstore.Users, userID, rec, nil); err != nil {
				e.logger.Error("update status: replace user", slog.String("user_id", userID), slog.String("job_id", jobID), slog.Any("err", err))
				return "", apperr.New(apperr.ErrUpdateFailed, MsgUpdateFailed, err)
			}
			return status, nil
		},
		lifecycle.Handlers[models.ApplicationStatus]{
			Name:      "applications/update-status",
			Fallback:  MsgUpdateFailed,
			Fulfilled: func(s models.ApplicationStatus) { e.setStatus(jobID, s) },
		})
	return err
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]string, 0, len(e.applied))
	for id := range e.applied {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return Snapshot{
		State:         e.state,
		Loading:       e.status.Loading,
		Error:         e.status.Error,
		Applications:  append([]models.Application(nil), e.apps...),
		AppliedJobIDs: ids,
	}
}

// IsApplied reports whether jobID is in the local applied set.
func (e *Engine) IsApplied(jobID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.applied[jobID]
	return ok
}

// ClearError drops the last error message.
func (e *Engine) ClearError() {
	e.mu.Lock()
	e.status.ClearError()
	e.mu.Unlock()
}

// Reset empties the list and the set and returns to the Empty state.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replaceApplications(nil)
	e.status.Reset()
	e.state = Empty
}

// loadUser reads the user as raw members so a later write-back keeps every
// field the store holds, including ones models.User does not declare.
func (e *Engine) loadUser(ctx context.Context, userID string) (*userRecord, error) {
	var fields map[string]json.RawMessage
	if err := e.gw.Get(ctx, recordstore.Users, userID, &fields); err != nil {
		return nil, err
	}
	return decodeUserRecord(fields)
}

func (e *Engine) timestamp() string {
	e.mu.Lock()
	now := e.now
	e.mu.Unlock()
	return now().UTC().Format(time.RFC3339Nano)
}

// The mutators below are the only code that touches apps or applied. They run
// with e.mu held.

// addApplication appends a, or overwrites the entry already held for the same
// job so the list never carries two entries for one job. A first confirmed
// write makes an Empty collection Ready.
func (e *Engine) addApplication(a models.Application) {
	if e.state == Empty {
		e.state = Ready
	}
	for i := range e.apps {
		if e.apps[i].JobID == a.JobID {
			e.apps[i] = a
			e.applied[a.JobID] = struct{}{}
			return
		}
	}
	e.apps = append(e.apps, a)
	e.applied[a.JobID] = struct{}{}
}

// replaceApplications swaps in list wholesale and rebuilds the set from
// scratch. Nothing from the previous state survives.
func (e *Engine) replaceApplications(list []models.Application) {
	apps := make([]models.Application, len(list))
	copy(apps, list)
	applied := make(map[string]struct{}, len(apps))
	for _, a := range apps {
		applied[a.JobID] = struct{}{}
	}
	e.apps = apps
	e.applied = applied
}

func (e *Engine) setStatus(jobID string, s models.ApplicationStatus) {
	for i := range e.apps {
		if e.apps[i].JobID == jobID {
			e.apps[i].Status = s
			return
		}
	}
}
