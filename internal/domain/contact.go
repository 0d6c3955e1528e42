package domain

import "time"

// ContactStatus 联系人状态（对应 contacts.status 列）
type ContactStatus string

const (
	StatusActive   ContactStatus = "Active"
	StatusProspect ContactStatus = "Prospect"
	StatusInactive ContactStatus = "Inactive"

	// StatusAll is the list-view wildcard; never stored.
	StatusAll ContactStatus = "All"
)

// Valid reports whether s is a storable status (StatusAll excluded).
func (s ContactStatus) Valid() bool {
	switch s {
	case StatusActive, StatusProspect, StatusInactive:
		return true
	}
	return false
}

// Contact 联系人领域模型（对应 contacts 表）
type Contact struct {
	ID             string        `db:"contact_id" json:"id"`          // UUID, PRIMARY KEY
	UserID         string        `db:"user_id" json:"user_id"`        // UUID, NOT NULL, row owner
	Name           string        `db:"name" json:"name"`              // VARCHAR(200), NOT NULL
	Company        string        `db:"company" json:"company"`        // VARCHAR(200)
	Website        string        `db:"website" json:"website"`        // VARCHAR(255)
	Email          string        `db:"email" json:"email"`            // VARCHAR(255)
	Phone          string        `db:"phone" json:"phone"`            // VARCHAR(25)
	Status         ContactStatus `db:"status" json:"status"`          // VARCHAR(20), NOT NULL
	CommercialArea string        `db:"commercial_area" json:"commercial_area"` // VARCHAR(100), free-text segment tag
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`  // TIMESTAMPTZ, NOT NULL
}

// ContactWithDetails is the join-fetch aggregate: a contact plus all of its
// child collections, as returned by the list endpoint.
type ContactWithDetails struct {
	Contact
	InternalNotes []InternalNote    `json:"internal_notes"`
	Interactions  []Interaction     `json:"interactions"`
	Financials    []FinancialRecord `json:"financials"`
	Alerts        []BillingAlert    `json:"alerts"`
}
