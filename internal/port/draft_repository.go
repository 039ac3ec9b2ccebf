package port

import (
	"context"
	"errors"

	"github.com/rl1809/inventory-records/internal/core/domain"
)

var ErrDraftNotFound = errors.New("draft not found")

// DraftRepository keeps one draft per session. Drafts are ephemeral and may expire.
type DraftRepository interface {
	LoadDraft(ctx context.Context, sessionID string) (*domain.Draft, error)
	SaveDraft(ctx context.Context, sessionID string, draft domain.Draft) error
	DeleteDraft(ctx context.Context, sessionID string) error
}
