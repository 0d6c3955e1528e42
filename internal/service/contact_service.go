package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/thiagovferrari/crm2026/internal/domain"
	"github.com/thiagovferrari/crm2026/internal/repository"
	"github.com/thiagovferrari/crm2026/internal/store"

	"go.uber.org/zap"
)

// StoreProvider resolves the view-model store bound to a user. Implemented
// by store.Manager; tests substitute a fixed store.
type StoreProvider interface {
	StoreFor(ctx context.Context, userID string) (store.ContactStore, error)
}

// ContactService 联系人服务
// Validation happens here, before anything is issued to the store: a request
// that fails validation never reaches the repositories or the KV.
type ContactService struct {
	stores StoreProvider
	logger *zap.Logger
}

func NewContactService(stores StoreProvider, logger *zap.Logger) *ContactService {
	return &ContactService{stores: stores, logger: logger}
}

// List returns the user's visible collection, optionally narrowed by the
// list-view predicate (query + status).
func (s *ContactService) List(ctx context.Context, userID, query string, status domain.ContactStatus) ([]domain.ContactWithDetails, error) {
	st, err := s.stores.StoreFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	contacts, err := st.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterContacts(contacts, query, status), nil
}

func (s *ContactService) Get(ctx context.Context, userID, contactID string) (*domain.ContactWithDetails, error) {
	contacts, err := s.List(ctx, userID, "", domain.StatusAll)
	if err != nil {
		return nil, err
	}
	for i := range contacts {
		if contacts[i].ID == contactID {
			return &contacts[i], nil
		}
	}
	return nil, fmt.Errorf("contact %s: %w", contactID, repository.ErrNotFound)
}

func (s *ContactService) Create(ctx context.Context, userID string, input store.ContactInput) (*domain.ContactWithDetails, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if input.Status == "" {
		input.Status = domain.StatusProspect
	}
	if !input.Status.Valid() {
		return nil, fmt.Errorf("invalid status %q", input.Status)
	}
	if input.Email != "" && !strings.Contains(input.Email, "@") {
		return nil, fmt.Errorf("invalid email %q", input.Email)
	}

	st, err := s.stores.StoreFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	created, err := st.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Contact created", zap.String("contact_id", created.ID))
	return created, nil
}

func (s *ContactService) Update(ctx context.Context, userID, contactID string, patch repository.ContactPatch) error {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return fmt.Errorf("invalid status %q", *patch.Status)
	}
	if patch.Email != nil && *patch.Email != "" && !strings.Contains(*patch.Email, "@") {
		return fmt.Errorf("invalid email %q", *patch.Email)
	}

	st, err := s.stores.StoreFor(ctx, userID)
	if err != nil {
		return err
	}
	return st.Update(ctx, contactID, patch)
}

func (s *ContactService) Delete(ctx context.Context, userID, contactID string, confirmed bool) error {
	st, err := s.stores.StoreFor(ctx, userID)
	if err != nil {
		return err
	}
	if err := st.Delete(ctx, contactID, confirmed); err != nil {
		return err
	}
	s.logger.Info("Contact deleted", zap.String("contact_id", contactID))
	return nil
}

// --- Interactions ---

func (s *ContactService) AddInteraction(ctx context.Context, userID, contactID string, rec domain.Interaction) (*domain.Interaction, error) {
	if strings.TrimSpace(rec.Content) == "" {
		return nil, fmt.Errorf("content is required")
	}
	if !rec.Kind.Valid() {
		return nil, fmt.Errorf("invalid interaction kind %q", rec.Kind)
	}
	if rec.Date.IsZero() {
		rec.Date = domain.Today()
	}

	st, err := s.stores.StoreFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return st.AddInteraction(ctx, contactID, rec)
}

func (s *ContactService) UpdateInteraction(ctx context.Context, userID, contactID, id string, patch repository.InteractionPatch) error {
	if patch.Kind != nil && !patch.Kind.Valid() {
		return fmt.Errorf("invalid interaction kind %q", *patch.Kind)
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return fmt.Errorf("content is required")
	}

	st, err := s.stores.StoreFor(ctx, userID)
	if err != nil {
		return err
	}
	return st.UpdateInteraction(ctx, contactID, id, patch)
}

func (s *ContactService) DeleteInteraction(ctx context.Context, userID, contactID, id string) error {
	st, err := s.stores.StoreFor(ctx, userID)
	if err != nil {
		return err
	}
	return st.DeleteInteraction(ctx, contactID, id)
}

// --- Financials ---

func (s *ContactService) AddFinancial(ctx context.Context, userID, contactID string, rec domain.FinancialRecord) (*domain.FinancialRecord, error) {
	if strings.TrimSpace(rec.ServiceName) == "" {
		return nil, fmt.Errorf("service_name is required")
	}
	if rec.ValueCharged < 0 || rec.ValuePaid < 0 {
		return nil, fmt.Errorf("amounts must not be negative")
	}

	st, err := s.stores.StoreFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return st.AddFinancial(ctx, contactID, rec)
}

func (s *ContactService) UpdateFinancial(ctx context.Context, userID, contactID string, rec domain.FinancialRecord) error {
	if strings.TrimSpace(rec.ServiceName) == "" {
		return fmt.Errorf("service_name is required")
	}
	if rec.ValueCharged < 0 || rec.ValuePaid < 0 {
		return fmt.Errorf("amounts must not be negative")
	}

	st, err := s.stores.StoreFor(ctx, userID)
	if err != nil {
		return err
	}
	return st.UpdateFinancial(ctx, contactID, rec)
}

func (s *ContactService) DeleteFinancial(ctx context.Context, userID, contactID, id string) error {
	st, err := s.stores.StoreFor(ctx, userID)
	if err != nil {
		return err
	}
	return st.DeleteFinancial(ctx, contactID, id)
}

// --- Alerts ---

func (s *ContactService) AddAlert(ctx context.Context, userID, contactID string, alert domain.BillingAlert) (*domain.BillingAlert, error) {
	if strings.TrimSpace(alert.Reason) == "" {
		return nil, fmt.Errorf("reason is required")
	}
	if alert.ChargeDate.IsZero() {
		return nil, fmt.Errorf("charge_date is required")
	}
	if !alert.Recurrence.Valid() {
		return nil, fmt.Errorf("invalid recurrence %q", alert.Recurrence)
	}

	st, err := s.stores.StoreFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return st.AddAlert(ctx, contactID, alert)
}

func (s *ContactService) UpdateAlert(ctx context.Context, userID, contactID, id string, patch repository.AlertPatch) error {
	if patch.Reason != nil && strings.TrimSpace(*patch.Reason) == "" {
		return fmt.Errorf("reason is required")
	}
	if patch.Recurrence != nil && !patch.Recurrence.Valid() {
		return fmt.Errorf("invalid recurrence %q", *patch.Recurrence)
	}

	st, err := s.stores.StoreFor(ctx, userID)
	if err != nil {
		return err
	}
	return st.UpdateAlert(ctx, contactID, id, patch)
}

func (s *ContactService) DeleteAlert(ctx context.Context, userID, contactID, id string) error {
	st, err := s.stores.StoreFor(ctx, userID)
	if err != nil {
		return err
	}
	return st.DeleteAlert(ctx, contactID, id)
}

// SettleAlert marks an alert as paid: a Once alert is consumed, a recurring
// one advances a single period from its prior charge date.
func (s *ContactService) SettleAlert(ctx context.Context, userID, contactID, alertID string) error {
	st, err := s.stores.StoreFor(ctx, userID)
	if err != nil {
		return err
	}
	if err := st.SettleAlert(ctx, contactID, alertID); err != nil {
		return err
	}
	s.logger.Info("Alert settled",
		zap.String("contact_id", contactID),
		zap.String("alert_id", alertID),
	)
	return nil
}

// --- Internal notes ---

func (s *ContactService) AddNote(ctx context.Context, userID, contactID string, note domain.InternalNote) (*domain.InternalNote, error) {
	if strings.TrimSpace(note.Content) == "" {
		return nil, fmt.Errorf("content is required")
	}
	if note.Date.IsZero() {
		note.Date = domain.Today()
	}

	st, err := s.stores.StoreFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return st.AddNote(ctx, contactID, note)
}

func (s *ContactService) UpdateNote(ctx context.Context, userID, contactID, id string, content string, date domain.Date) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content is required")
	}

	st, err := s.stores.StoreFor(ctx, userID)
	if err != nil {
		return err
	}
	return st.UpdateNote(ctx, contactID, id, content, date)
}

func (s *ContactService) DeleteNote(ctx context.Context, userID, contactID, id string) error {
	st, err := s.stores.StoreFor(ctx, userID)
	if err != nil {
		return err
	}
	return st.DeleteNote(ctx, contactID, id)
}
