package domain

// InternalNote 内部备注领域模型（对应 internal_notes 表）
type InternalNote struct {
	ID        string `db:"note_id" json:"id"`            // UUID, PRIMARY KEY
	ContactID string `db:"contact_id" json:"contact_id"` // UUID, NOT NULL, FK contacts
	Content   string `db:"content" json:"content"`       // TEXT
	Date      Date   `db:"date" json:"date"`             // DATE, NOT NULL
}
