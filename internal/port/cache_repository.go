package port

import (
	"context"

	"github.com/rl1809/inventory-records/internal/core/domain"
)

type CacheRepository interface {
	// GetRecordList returns the cached list; ok is false on a miss
	GetRecordList(ctx context.Context) (records []domain.Record, ok bool, err error)

	SetRecordList(ctx context.Context, records []domain.Record) error

	// InvalidateRecordList drops the cached list after a write
	InvalidateRecordList(ctx context.Context) error
}
