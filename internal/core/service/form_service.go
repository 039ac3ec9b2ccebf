package service

import (
	"context"
	"errors"

	"github.com/rl1809/inventory-records/internal/core/domain"
)

// FormService drives a caller-held draft through insert and update submissions.
// A draft is reset only after a successful submit, a cancel, or removal of
// the record it targets; failures leave it untouched so input can be fixed.
type FormService struct {
	records *RecordService
}

func NewFormService(records *RecordService) *FormService {
	return &FormService{records: records}
}

// Submit commits the draft and returns the id of the inserted or updated record.
func (f *FormService) Submit(ctx context.Context, draft *domain.Draft) (int64, error) {
	var (
		id  int64
		err error
	)
	switch draft.Mode {
	case domain.DraftModeUpdate:
		id = draft.TargetID
		err = f.records.Update(ctx, id, draft.Fields)
	default:
		id, err = f.records.Insert(ctx, draft.Fields)
	}
	if err != nil {
		return 0, err
	}

	draft.Reset()
	return id, nil
}

func (f *FormService) SelectForEdit(ctx context.Context, draft *domain.Draft, id int64) (domain.Record, error) {
	record, err := f.records.SelectForEdit(ctx, id)
	if err != nil {
		return domain.Record{}, err
	}

	draft.Edit(record)
	return record, nil
}

// Delete removes the record and drops a draft that was editing it.
func (f *FormService) Delete(ctx context.Context, draft *domain.Draft, id int64) error {
	err := f.records.Delete(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if draft.Targets(id) {
		draft.Reset()
	}
	return err
}

func (f *FormService) Cancel(draft *domain.Draft) {
	draft.Reset()
}
