package port

import (
	"context"
	"errors"

	"github.com/rl1809/inventory-records/internal/core/domain"
)

// ErrRecordNotFound is returned by repositories when no record has the given id.
var ErrRecordNotFound = errors.New("record not found")

type RecordRepository interface {
	// ListRecords returns every record ordered by name (byte order), then id
	ListRecords(ctx context.Context) ([]domain.Record, error)

	// GetRecord returns ErrRecordNotFound when id is absent
	GetRecord(ctx context.Context, id int64) (*domain.Record, error)

	// CreateRecord assigns a fresh id, never reusing one that was issued before
	CreateRecord(ctx context.Context, record domain.Record) (*domain.Record, error)

	// UpdateRecord overwrites name, stock and price of an existing record
	UpdateRecord(ctx context.Context, record domain.Record) (*domain.Record, error)

	// DeleteRecord returns ErrRecordNotFound when id is absent
	DeleteRecord(ctx context.Context, id int64) error
}
