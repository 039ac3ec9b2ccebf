package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Record struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Stock     decimal.Decimal `json:"stock"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Fields holds record values as the caller typed them, before validation.
type Fields struct {
	Name  string `json:"name"`
	Stock string `json:"stock"`
	Price string `json:"price"`
}

// Fields renders the record back into editable text.
func (r Record) Fields() Fields {
	return Fields{
		Name:  r.Name,
		Stock: r.Stock.String(),
		Price: r.Price.String(),
	}
}

type RecordEventType string

const (
	RecordCreated RecordEventType = "record.created"
	RecordUpdated RecordEventType = "record.updated"
	RecordDeleted RecordEventType = "record.deleted"
)

type RecordEvent struct {
	Type       RecordEventType `json:"type"`
	RecordID   int64           `json:"record_id"`
	Record     *Record         `json:"record,omitempty"` // nil for deletions
	OccurredAt time.Time       `json:"occurred_at"`
}
