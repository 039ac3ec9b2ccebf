package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewDraft_StartsInInsertMode(t *testing.T) {
	d := NewDraft()

	assert.Equal(t, DraftModeInsert, d.Mode)
	assert.Equal(t, Fields{}, d.Fields)
	assert.Zero(t, d.TargetID)
}

func TestDraft_Edit(t *testing.T) {
	d := NewDraft()
	d.Edit(Record{
		ID:    7,
		Name:  "Chair",
		Stock: decimal.RequireFromString("10"),
		Price: decimal.RequireFromString("150000"),
	})

	assert.Equal(t, DraftModeUpdate, d.Mode)
	assert.Equal(t, int64(7), d.TargetID)
	assert.Equal(t, Fields{Name: "Chair", Stock: "10", Price: "150000"}, d.Fields)
	assert.True(t, d.Targets(7))
	assert.False(t, d.Targets(8))
}

func TestDraft_Reset(t *testing.T) {
	d := Draft{Mode: DraftModeUpdate, Fields: Fields{Name: "Bag"}, TargetID: 2}

	d.Reset()

	assert.Equal(t, NewDraft(), d)
	assert.False(t, d.Targets(2))
}

func TestRecord_FieldsKeepsDecimalText(t *testing.T) {
	r := Record{
		Name:  "Lamp",
		Stock: decimal.RequireFromString("2.5"),
		Price: decimal.RequireFromString("99999.99"),
	}

	assert.Equal(t, Fields{Name: "Lamp", Stock: "2.5", Price: "99999.99"}, r.Fields())
}

func TestRecord_FieldsNormalisesNumbers(t *testing.T) {
	r := Record{
		Name:  "Chair",
		Stock: decimal.RequireFromString("010"),
		Price: decimal.RequireFromString("10.50"),
	}

	assert.Equal(t, Fields{Name: "Chair", Stock: "10", Price: "10.5"}, r.Fields())
}
