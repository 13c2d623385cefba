package coordinator

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mvantol/ansuz/internal/apperr"
	"github.com/mvantol/ansuz/internal/enrich"
	"github.com/mvantol/ansuz/internal/storage"
)

// Mutator performs multi-file updates as all-or-nothing sessions over a
// filesystem that offers no transactions: staged operations are applied in
// order, and a failure mid-commit reverses the already-applied ones in LIFO
// order before the error surfaces.
type Mutator struct {
	base
}

// NewMutator creates a safe-mutation coordinator for root. The enrichment
// delegate is part of the shared contract but unused here.
func NewMutator(root string, _ enrich.Enricher, logger *slog.Logger) (*Mutator, error) {
	b, err := newBase(root, logger)
	if err != nil {
		return nil, err
	}
	return &Mutator{base: b}, nil
}

// Begin opens a new empty session.
func (m *Mutator) Begin() *Session {
	return &Session{store: m.store, logger: m.logger, state: SessionStaged}
}

// SessionState tags where a session is in its life.
type SessionState string

const (
	SessionStaged     SessionState = "staged"
	SessionCommitted  SessionState = "committed"
	SessionRolledBack SessionState = "rolled_back"
)

// Op is one revertible file operation inside a session. Apply may capture
// whatever prior state Revert needs to restore.
type Op interface {
	Apply(store storage.Provider) error
	Revert(store storage.Provider) error
	String() string
}

// Session is a staged group of file operations committed or rolled back as a
// unit.
type Session struct {
	store  storage.Provider
	logger *slog.Logger
	state  SessionState
	staged []Op
}

// State returns the session's current state.
func (s *Session) State() SessionState { return s.state }

// Stage queues op for the next Commit. Only a session still in the staged
// state accepts operations.
func (s *Session) Stage(op Op) error {
	if s.state != SessionStaged {
		return fmt.Errorf("session: cannot stage in state %s: %w", s.state, apperr.ErrMutation)
	}
	s.staged = append(s.staged, op)
	return nil
}

// Commit applies every staged operation in order. If one fails, the
// operations already applied are reverted in LIFO order, the session moves to
// rolled_back, and the failure is returned wrapped in apperr.ErrMutation.
func (s *Session) Commit() error {
	if s.state != SessionStaged {
		return fmt.Errorf("session: cannot commit in state %s: %w", s.state, apperr.ErrMutation)
	}

	var applied []Op
	for _, op := range s.staged {
		if err := op.Apply(s.store); err != nil {
			s.revert(applied)
			s.state = SessionRolledBack
			return fmt.Errorf("session: %s: %v: %w", op, err, apperr.ErrMutation)
		}
		applied = append(applied, op)
	}
	s.state = SessionCommitted
	s.logger.Info("session committed", slog.Int("operations", len(applied)))
	return nil
}

// Rollback discards a session that has not been committed.
func (s *Session) Rollback() error {
	if s.state != SessionStaged {
		return fmt.Errorf("session: cannot roll back in state %s: %w", s.state, apperr.ErrMutation)
	}
	s.staged = nil
	s.state = SessionRolledBack
	return nil
}

// revert undoes applied operations last-first. Revert failures are logged;
// the filesystem cannot be made worse by skipping a failed compensation.
func (s *Session) revert(applied []Op) {
	for i := len(applied) - 1; i >= 0; i-- {
		if err := applied[i].Revert(s.store); err != nil {
			s.logger.Error("session: revert failed",
				slog.String("op", applied[i].String()),
				slog.String("error", err.Error()))
		}
	}
}

// MoveOp relocates a file. Reverting moves it back.
type MoveOp struct {
	From string
	To   string
}

func (op *MoveOp) Apply(store storage.Provider) error {
	if store.Exists(op.To) {
		return fmt.Errorf("%s: %w", op.To, apperr.ErrAlreadyExists)
	}
	return store.Move(op.From, op.To)
}

func (op *MoveOp) Revert(store storage.Provider) error {
	return store.Move(op.To, op.From)
}

func (op *MoveOp) String() string { return fmt.Sprintf("move %s -> %s", op.From, op.To) }

// WriteOp writes content to a path, capturing any previous content so the
// revert can restore it (or delete a file that did not exist before).
type WriteOp struct {
	Path    string
	Content []byte

	prev    []byte
	existed bool
}

func (op *WriteOp) Apply(store storage.Provider) error {
	prev, err := store.Read(op.Path)
	switch {
	case err == nil:
		op.prev = prev
		op.existed = true
	case errors.Is(err, os.ErrNotExist):
		op.existed = false
	default:
		return err
	}
	return store.Write(op.Path, op.Content)
}

func (op *WriteOp) Revert(store storage.Provider) error {
	if op.existed {
		return store.Write(op.Path, op.prev)
	}
	return store.Delete(op.Path)
}

func (op *WriteOp) String() string { return fmt.Sprintf("write %s", op.Path) }

// DeleteOp removes a file, capturing its content for the revert.
type DeleteOp struct {
	Path string

	prev []byte
}

func (op *DeleteOp) Apply(store storage.Provider) error {
	prev, err := store.Read(op.Path)
	if err != nil {
		return err
	}
	op.prev = prev
	return store.Delete(op.Path)
}

func (op *DeleteOp) Revert(store storage.Provider) error {
	return store.Write(op.Path, op.prev)
}

func (op *DeleteOp) String() string { return fmt.Sprintf("delete %s", op.Path) }
