package repository

import (
	"context"
	"errors"

	"github.com/thiagovferrari/crm2026/internal/domain"
)

// ErrNotFound 记录不存在（或不属于该用户）
var ErrNotFound = errors.New("record not found")

// ContactsRepository 联系人Repository接口
// Every query is scoped by userID: row ownership lives in the query, the
// service layer never re-filters.
type ContactsRepository interface {
	// ListWithDetails returns every contact owned by userID with all four
	// child collections attached, ordered by created_at descending.
	ListWithDetails(ctx context.Context, userID string) ([]domain.ContactWithDetails, error)
	GetWithDetails(ctx context.Context, userID, contactID string) (*domain.ContactWithDetails, error)
	Create(ctx context.Context, contact *domain.Contact) error
	Update(ctx context.Context, userID, contactID string, patch ContactPatch) error
	Delete(ctx context.Context, userID, contactID string) error
}

// ContactPatch 联系人部分更新（nil = 不修改）
type ContactPatch struct {
	Name           *string               `json:"name"`
	Company        *string               `json:"company"`
	Website        *string               `json:"website"`
	Email          *string               `json:"email"`
	Phone          *string               `json:"phone"`
	Status         *domain.ContactStatus `json:"status"`
	CommercialArea *string               `json:"commercial_area"`
}

// InteractionsRepository 互动记录Repository接口
// Ownership is enforced through the owning contact row: mutations touch
// nothing unless the contact belongs to userID.
type InteractionsRepository interface {
	Create(ctx context.Context, userID string, rec *domain.Interaction) error
	Update(ctx context.Context, userID, id string, patch InteractionPatch) error
	Delete(ctx context.Context, userID, id string) error
}

// InteractionPatch edits replace content/kind in place by id.
type InteractionPatch struct {
	Kind    *domain.InteractionKind `json:"kind"`
	Content *string                 `json:"content"`
	Date    *domain.Date            `json:"date"`
}

// FinancialsRepository 财务记录Repository接口
// Status is recomputed by the service before every write; the repository
// stores whatever it is handed.
type FinancialsRepository interface {
	Get(ctx context.Context, userID, id string) (*domain.FinancialRecord, error)
	Create(ctx context.Context, userID string, rec *domain.FinancialRecord) error
	Update(ctx context.Context, userID string, rec *domain.FinancialRecord) error
	Delete(ctx context.Context, userID, id string) error
}

// AlertsRepository 账单提醒Repository接口
type AlertsRepository interface {
	ListByContact(ctx context.Context, userID, contactID string) ([]domain.BillingAlert, error)
	Create(ctx context.Context, userID string, alert *domain.BillingAlert) error
	// UpdateChargeDate moves a recurring alert to its next cycle.
	UpdateChargeDate(ctx context.Context, userID, id string, next domain.Date) error
	Update(ctx context.Context, userID, id string, patch AlertPatch) error
	Delete(ctx context.Context, userID, id string) error
}

// AlertPatch 账单提醒部分更新
type AlertPatch struct {
	Reason     *string            `json:"reason"`
	Value      *float64           `json:"value"`
	ChargeDate *domain.Date       `json:"charge_date"`
	Recurrence *domain.Recurrence `json:"recurrence"`
}

// NotesRepository 内部备注Repository接口
type NotesRepository interface {
	Create(ctx context.Context, userID string, note *domain.InternalNote) error
	Update(ctx context.Context, userID, id string, content string, date domain.Date) error
	Delete(ctx context.Context, userID, id string) error
}

// User 用户行（auth collaborator）
type User struct {
	UserID       string `db:"user_id"`
	Email        string `db:"email"`
	PasswordHash []byte `db:"password_hash"` // SHA256, BYTEA
}

// UsersRepository 用户Repository接口
type UsersRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
}
