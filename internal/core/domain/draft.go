package domain

type DraftMode string

const (
	DraftModeInsert DraftMode = "insert"
	DraftModeUpdate DraftMode = "update"
)

// Draft is the caller-owned staging area for a record being created or edited.
// It is never persisted by the record store.
type Draft struct {
	Mode     DraftMode `json:"mode"`
	Fields   Fields    `json:"fields"`
	TargetID int64     `json:"target_id,omitempty"` // zero unless Mode is DraftModeUpdate
}

func NewDraft() Draft {
	return Draft{Mode: DraftModeInsert}
}

func (d *Draft) Reset() {
	*d = NewDraft()
}

// Edit stages an existing record for update.
func (d *Draft) Edit(r Record) {
	d.Mode = DraftModeUpdate
	d.Fields = r.Fields()
	d.TargetID = r.ID
}

func (d Draft) Targets(id int64) bool {
	return d.Mode == DraftModeUpdate && d.TargetID == id
}
