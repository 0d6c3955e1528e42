package domain

import "time"

// Recurrence 账单提醒周期（对应 alerts.recurrence 列）
type Recurrence string

const (
	RecurrenceOnce    Recurrence = "Once"
	RecurrenceWeekly  Recurrence = "Weekly"
	RecurrenceMonthly Recurrence = "Monthly"
	RecurrenceYearly  Recurrence = "Yearly"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceOnce, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// BillingAlert 账单提醒领域模型（对应 alerts 表）
// A Once alert is deleted on settlement; recurring alerts advance in place.
type BillingAlert struct {
	ID         string     `db:"alert_id" json:"id"`            // UUID, PRIMARY KEY
	ContactID  string     `db:"contact_id" json:"contact_id"`  // UUID, NOT NULL, FK contacts
	Reason     string     `db:"reason" json:"reason"`          // VARCHAR(255), NOT NULL
	Value      float64    `db:"value" json:"value"`            // NUMERIC(12,2), NOT NULL
	ChargeDate Date       `db:"charge_date" json:"charge_date"` // DATE, NOT NULL
	Recurrence Recurrence `db:"recurrence" json:"recurrence"`  // VARCHAR(10), NOT NULL
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`  // TIMESTAMPTZ, NOT NULL
}
