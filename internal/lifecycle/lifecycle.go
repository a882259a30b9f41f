// Package lifecycle implements the pending / fulfilled / rejected contract
// shared by every stateful client feature.
//
// A feature owns a mutex and a Status. Run flips the status to pending under
// the lock, performs the operation without holding it, then applies either the
// fulfilled or the rejected transition under the lock again. The feature's own
// state changes happen inside those callbacks, so a reader taking the same lock
// never observes a half-applied result.
//
// Concurrent calls are neither queued nor merged: each resolves on its own and
// Loading reflects whichever transition ran last.
package lifecycle

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/garnizeh/jobboard/internal/apperr"
)

type Phase int

const (
	Idle Phase = iota
	Pending
	Fulfilled
	Rejected
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "idle"
	}
}

// Status is the request state embedded in a feature's state.
type Status struct {
	Phase   Phase
	Loading bool
	Error   string
}

func (s *Status) pending() {
	s.Phase = Pending
	s.Loading = true
	s.Error = ""
}

func (s *Status) fulfilled() {
	s.Phase = Fulfilled
	s.Loading = false
	s.Error = ""
}

func (s *Status) rejected(msg string) {
	s.Phase = Rejected
	s.Loading = false
	s.Error = msg
}

// ClearError drops the last error message without touching the phase.
func (s *Status) ClearError() {
	s.Error = ""
}

// Reset returns the status to idle.
func (s *Status) Reset() {
	*s = Status{}
}

// Handlers are the per-operation reducers. All of them run with the feature's
// lock held and must not block.
type Handlers[T any] struct {
	// Name is used for logging only.
	Name string
	// Fallback is the message shown when the error carries none.
	Fallback string
	// Pending runs right after the pending transition.
	Pending func()
	// Fulfilled merges the result into the feature state.
	Fulfilled func(T)
	// Rejected lets the feature adjust its state on failure.
	Rejected func(error)
	// Settled runs after either transition, still under the lock.
	Settled func(Phase)
}

var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger installs a logger for the lifecycle package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// Run executes op under the lifecycle contract and returns its result. The
// returned error is the one produced by op; the status only ever holds its
// user-facing message.
func Run[T any](ctx context.Context, mu sync.Locker, st *Status, op func(context.Context) (T, error), h Handlers[T]) (T, error) {
	mu.Lock()
	st.pending()
	if h.Pending != nil {
		h.Pending()
	}
	mu.Unlock()

	res, err := op(ctx)

	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		msg := apperr.Message(err, h.Fallback)
		logger.Debug("lifecycle: rejected", slog.String("op", h.Name), slog.String("message", msg))
		if h.Rejected != nil {
			h.Rejected(err)
		}
		st.rejected(msg)
		if h.Settled != nil {
			h.Settled(Rejected)
		}
		return res, err
	}

	if h.Fulfilled != nil {
		h.Fulfilled(res)
	}
	st.fulfilled()
	logger.Debug("lifecycle: fulfilled", slog.String("op", h.Name))
	if h.Settled != nil {
		h.Settled(Fulfilled)
	}
	return res, nil
}
