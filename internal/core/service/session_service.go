package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/inventory-records/internal/core/domain"
	"github.com/rl1809/inventory-records/internal/port"
)

// SessionService holds drafts on behalf of remote callers, one per session id.
type SessionService struct {
	mu     sync.Mutex
	form   *FormService
	drafts port.DraftRepository
	log    *zap.Logger
}

func NewSessionService(form *FormService, drafts port.DraftRepository, log *zap.Logger) *SessionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionService{form: form, drafts: drafts, log: log}
}

// Open starts a session with an empty insert draft.
func (s *SessionService) Open(ctx context.Context) (string, domain.Draft, error) {
	sessionID := uuid.NewString()
	draft := domain.NewDraft()

	if err := s.drafts.SaveDraft(ctx, sessionID, draft); err != nil {
		return "", domain.Draft{}, fmt.Errorf("open session: %w: %w", ErrPersistence, err)
	}
	return sessionID, draft, nil
}

func (s *SessionService) Draft(ctx context.Context, sessionID string) (domain.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.Draft{}, err
	}
	return *draft, nil
}

// SetFields replaces the candidate text, keeping mode and target.
func (s *SessionService) SetFields(ctx context.Context, sessionID string, fields domain.Fields) (domain.Draft, error) {
	return s.apply(ctx, sessionID, func(d *domain.Draft) error {
		d.Fields = fields
		return nil
	})
}

func (s *SessionService) Submit(ctx context.Context, sessionID string) (int64, domain.Draft, error) {
	var id int64
	draft, err := s.apply(ctx, sessionID, func(d *domain.Draft) error {
		var err error
		id, err = s.form.Submit(ctx, d)
		return err
	})
	return id, draft, err
}

func (s *SessionService) SelectForEdit(ctx context.Context, sessionID string, id int64) (domain.Record, domain.Draft, error) {
	var record domain.Record
	draft, err := s.apply(ctx, sessionID, func(d *domain.Draft) error {
		var err error
		record, err = s.form.SelectForEdit(ctx, d, id)
		return err
	})
	return record, draft, err
}

func (s *SessionService) Delete(ctx context.Context, sessionID string, id int64) (domain.Draft, error) {
	return s.apply(ctx, sessionID, func(d *domain.Draft) error {
		return s.form.Delete(ctx, d, id)
	})
}

func (s *SessionService) Cancel(ctx context.Context, sessionID string) (domain.Draft, error) {
	return s.apply(ctx, sessionID, func(d *domain.Draft) error {
		s.form.Cancel(d)
		return nil
	})
}

func (s *SessionService) Close(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.load(ctx, sessionID); err != nil {
		return err
	}
	if err := s.drafts.DeleteDraft(ctx, sessionID); err != nil {
		return fmt.Errorf("close session: %w: %w", ErrPersistence, err)
	}
	return nil
}

// apply loads the draft, runs one transition and saves the result. The draft is
// saved even when the transition fails so retained input survives.
func (s *SessionService) apply(ctx context.Context, sessionID string, transition func(*domain.Draft) error) (domain.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.Draft{}, err
	}

	opErr := transition(draft)

	if err := s.drafts.SaveDraft(ctx, sessionID, *draft); err != nil {
		if opErr != nil {
			s.log.Error("draft save failed", zap.String("session_id", sessionID), zap.Error(err))
			return *draft, opErr
		}
		return *draft, fmt.Errorf("save draft: %w: %w", ErrPersistence, err)
	}
	return *draft, opErr
}

func (s *SessionService) load(ctx context.Context, sessionID string) (*domain.Draft, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, sessionID)
	}

	draft, err := s.drafts.LoadDraft(ctx, sessionID)
	if errors.Is(err, port.ErrDraftNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w: %w", ErrPersistence, err)
	}
	return draft, nil
}
