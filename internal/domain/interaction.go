package domain

// InteractionKind 互动类型（对应 interactions.kind 列）
type InteractionKind string

const (
	InteractionComment  InteractionKind = "Comment"
	InteractionStrategy InteractionKind = "Strategy"
	InteractionMeeting  InteractionKind = "Meeting"
	InteractionCall     InteractionKind = "Call"
)

func (k InteractionKind) Valid() bool {
	switch k {
	case InteractionComment, InteractionStrategy, InteractionMeeting, InteractionCall:
		return true
	}
	return false
}

// Interaction 互动记录领域模型（对应 interactions 表）
// Append-mostly log; edits replace content/kind in place by id.
type Interaction struct {
	ID        string          `db:"interaction_id" json:"id"` // UUID, PRIMARY KEY
	ContactID string          `db:"contact_id" json:"contact_id"` // UUID, NOT NULL, FK contacts
	Kind      InteractionKind `db:"kind" json:"kind"`             // VARCHAR(20), NOT NULL
	Content   string          `db:"content" json:"content"`       // TEXT
	Date      Date            `db:"date" json:"date"`             // DATE, NOT NULL
}
