package domain

import "time"

// FinancialStatus 财务记录状态（派生字段，不可直接设置）
type FinancialStatus string

const (
	FinancialPending FinancialStatus = "Pending"
	FinancialPaid    FinancialStatus = "Paid"
)

// FinancialRecord 财务记录领域模型（对应 financials 表）
//
// Status is derived: Paid iff ValuePaid >= ValueCharged. It is recomputed at
// every mutation boundary (Normalize) and never trusted from client input.
type FinancialRecord struct {
	ID          string          `db:"financial_id" json:"id"`            // UUID, PRIMARY KEY
	ContactID   string          `db:"contact_id" json:"contact_id"`      // UUID, NOT NULL, FK contacts
	ServiceName string          `db:"service_name" json:"service_name"`  // VARCHAR(200), NOT NULL
	ValueCharged float64        `db:"value_charged" json:"value_charged"` // NUMERIC(12,2), NOT NULL
	ValuePaid   float64         `db:"value_paid" json:"value_paid"`      // NUMERIC(12,2), NOT NULL, DEFAULT 0
	PaymentDate Date            `db:"payment_date" json:"payment_date"`  // DATE, NULL while unpaid
	Status      FinancialStatus `db:"status" json:"status"`              // VARCHAR(10), derived
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`      // TIMESTAMPTZ, NOT NULL
}

// DeriveStatus computes the status implied by the amounts.
func (f FinancialRecord) DeriveStatus() FinancialStatus {
	if f.ValuePaid >= f.ValueCharged {
		return FinancialPaid
	}
	return FinancialPending
}

// Normalize re-derives Status from the amounts. Called at every write.
func (f *FinancialRecord) Normalize() {
	f.Status = f.DeriveStatus()
}
