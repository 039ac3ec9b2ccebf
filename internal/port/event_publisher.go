package port

import (
	"context"

	"github.com/rl1809/inventory-records/internal/core/domain"
)

type EventPublisher interface {
	Publish(ctx context.Context, event domain.RecordEvent) error
	Close() error
}
