package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/thiagovferrari/crm2026/internal/billing"
	"github.com/thiagovferrari/crm2026/internal/domain"
	"github.com/thiagovferrari/crm2026/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const localKeyPrefix = "crm:contacts:"

// LocalStore 本地模式 view-model store
// The whole collection lives in memory, serialized verbatim to one KV key on
// every mutation and reloaded on construction. No conflict detection: last
// writer wins. Ownership filtering happens here, client-side, by user id.
type LocalStore struct {
	mu       sync.Mutex
	kv       KV
	key      string
	userID   string
	contacts []domain.ContactWithDetails
	logger   *zap.Logger
}

var _ ContactStore = (*LocalStore)(nil)

// NewLocalStore loads the persisted collection for userID. A missing key
// starts empty; a corrupt payload is an error, not silently dropped.
func NewLocalStore(ctx context.Context, kv KV, userID string, logger *zap.Logger) (*LocalStore, error) {
	s := &LocalStore{
		kv:     kv,
		key:    localKeyPrefix + userID,
		userID: userID,
		logger: logger,
	}

	raw, err := kv.Get(ctx, s.key)
	if err != nil {
		if err == ErrMiss {
			s.contacts = []domain.ContactWithDetails{}
			return s, nil
		}
		return nil, fmt.Errorf("failed to load local contacts: %w", err)
	}

	var all []domain.ContactWithDetails
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return nil, fmt.Errorf("failed to decode local contacts: %w", err)
	}

	s.contacts = make([]domain.ContactWithDetails, 0, len(all))
	for _, c := range all {
		if c.UserID == userID {
			s.contacts = append(s.contacts, c)
		}
	}
	return s, nil
}

// persistLocked writes next to the KV and only then makes it visible, so a
// failed write leaves the snapshot as it was.
func (s *LocalStore) persistLocked(ctx context.Context, next []domain.ContactWithDetails) error {
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode contacts: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(payload), 0); err != nil {
		return fmt.Errorf("failed to persist contacts: %w", err)
	}
	s.contacts = next
	return nil
}

func (s *LocalStore) indexLocked(contactID string) (int, error) {
	for i, c := range s.contacts {
		if c.ID == contactID {
			return i, nil
		}
	}
	return -1, fmt.Errorf("contact %s: %w", contactID, repository.ErrNotFound)
}

// cloneLocked copies the top-level slice and the entry at idx deeply enough
// that child-collection edits never leak into the visible snapshot before
// the persist succeeds.
func (s *LocalStore) cloneLocked(idx int) []domain.ContactWithDetails {
	next := make([]domain.ContactWithDetails, len(s.contacts))
	copy(next, s.contacts)
	if idx >= 0 {
		c := next[idx]
		c.InternalNotes = append([]domain.InternalNote{}, c.InternalNotes...)
		c.Interactions = append([]domain.Interaction{}, c.Interactions...)
		c.Financials = append([]domain.FinancialRecord{}, c.Financials...)
		c.Alerts = append([]domain.BillingAlert{}, c.Alerts...)
		next[idx] = c
	}
	return next
}

func (s *LocalStore) List(ctx context.Context) ([]domain.ContactWithDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ContactWithDetails, len(s.contacts))
	copy(out, s.contacts)
	return out, nil
}

func (s *LocalStore) Create(ctx context.Context, input ContactInput) (*domain.ContactWithDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := domain.ContactWithDetails{
		Contact: domain.Contact{
			ID:             uuid.NewString(),
			UserID:         s.userID,
			Name:           input.Name,
			Company:        input.Company,
			Website:        input.Website,
			Email:          input.Email,
			Phone:          input.Phone,
			Status:         input.Status,
			CommercialArea: input.CommercialArea,
			CreatedAt:      time.Now().UTC(),
		},
		InternalNotes: []domain.InternalNote{},
		Interactions:  []domain.Interaction{},
		Financials:    []domain.FinancialRecord{},
		Alerts:        []domain.BillingAlert{},
	}

	next := append(s.cloneLocked(-1), c)
	if err := s.persistLocked(ctx, next); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *LocalStore) Update(ctx context.Context, contactID string, patch repository.ContactPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(contactID)
	if err != nil {
		return err
	}

	next := s.cloneLocked(idx)
	c := &next[idx].Contact
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Company != nil {
		c.Company = *patch.Company
	}
	if patch.Website != nil {
		c.Website = *patch.Website
	}
	if patch.Email != nil {
		c.Email = *patch.Email
	}
	if patch.Phone != nil {
		c.Phone = *patch.Phone
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.CommercialArea != nil {
		c.CommercialArea = *patch.CommercialArea
	}
	return s.persistLocked(ctx, next)
}

func (s *LocalStore) Delete(ctx context.Context, contactID string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(contactID)
	if err != nil {
		return err
	}
	next := s.cloneLocked(-1)
	next = append(next[:idx], next[idx+1:]...)
	return s.persistLocked(ctx, next)
}

// --- Interactions ---

func (s *LocalStore) AddInteraction(ctx context.Context, contactID string, rec domain.Interaction) (*domain.Interaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(contactID)
	if err != nil {
		return nil, err
	}

	rec.ID = uuid.NewString()
	rec.ContactID = contactID

	next := s.cloneLocked(idx)
	next[idx].Interactions = append(next[idx].Interactions, rec)
	if err := s.persistLocked(ctx, next); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *LocalStore) UpdateInteraction(ctx context.Context, contactID, id string, patch repository.InteractionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(contactID)
	if err != nil {
		return err
	}

	next := s.cloneLocked(idx)
	found := false
	for i := range next[idx].Interactions {
		if next[idx].Interactions[i].ID != id {
			continue
		}
		rec := &next[idx].Interactions[i]
		if patch.Kind != nil {
			rec.Kind = *patch.Kind
		}
		if patch.Content != nil {
			rec.Content = *patch.Content
		}
		if patch.Date != nil {
			rec.Date = *patch.Date
		}
		found = true
		break
	}
	if !found {
		return fmt.Errorf("interaction %s: %w", id, repository.ErrNotFound)
	}
	return s.persistLocked(ctx, next)
}

func (s *LocalStore) DeleteInteraction(ctx context.Context, contactID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(contactID)
	if err != nil {
		return err
	}

	next := s.cloneLocked(idx)
	kept := next[idx].Interactions[:0:0]
	for _, rec := range next[idx].Interactions {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(next[idx].Interactions) {
		return fmt.Errorf("interaction %s: %w", id, repository.ErrNotFound)
	}
	next[idx].Interactions = kept
	return s.persistLocked(ctx, next)
}

// --- Financials ---

func (s *LocalStore) AddFinancial(ctx context.Context, contactID string, rec domain.FinancialRecord) (*domain.FinancialRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(contactID)
	if err != nil {
		return nil, err
	}

	rec.ID = uuid.NewString()
	rec.ContactID = contactID
	rec.CreatedAt = time.Now().UTC()
	rec.Normalize()

	next := s.cloneLocked(idx)
	next[idx].Financials = append(next[idx].Financials, rec)
	if err := s.persistLocked(ctx, next); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *LocalStore) UpdateFinancial(ctx context.Context, contactID string, rec domain.FinancialRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(contactID)
	if err != nil {
		return err
	}

	rec.Normalize()

	next := s.cloneLocked(idx)
	found := false
	for i := range next[idx].Financials {
		if next[idx].Financials[i].ID != rec.ID {
			continue
		}
		rec.ContactID = contactID
		rec.CreatedAt = next[idx].Financials[i].CreatedAt
		next[idx].Financials[i] = rec
		found = true
		break
	}
	if !found {
		return fmt.Errorf("financial record %s: %w", rec.ID, repository.ErrNotFound)
	}
	return s.persistLocked(ctx, next)
}

func (s *LocalStore) DeleteFinancial(ctx context.Context, contactID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(contactID)
	if err != nil {
		return err
	}

	next := s.cloneLocked(idx)
	kept := next[idx].Financials[:0:0]
	for _, rec := range next[idx].Financials {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(next[idx].Financials) {
		return fmt.Errorf("financial record %s: %w", id, repository.ErrNotFound)
	}
	next[idx].Financials = kept
	return s.persistLocked(ctx, next)
}

// --- Alerts ---

func (s *LocalStore) AddAlert(ctx context.Context, contactID string, alert domain.BillingAlert) (*domain.BillingAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(contactID)
	if err != nil {
		return nil, err
	}

	alert.ID = uuid.NewString()
	alert.ContactID = contactID
	alert.CreatedAt = time.Now().UTC()

	next := s.cloneLocked(idx)
	next[idx].Alerts = append(next[idx].Alerts, alert)
	if err := s.persistLocked(ctx, next); err != nil {
		return nil, err
	}
	return &alert, nil
}

func (s *LocalStore) UpdateAlert(ctx context.Context, contactID, id string, patch repository.AlertPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(contactID)
	if err != nil {
		return err
	}

	next := s.cloneLocked(idx)
	found := false
	for i := range next[idx].Alerts {
		if next[idx].Alerts[i].ID != id {
			continue
		}
		a := &next[idx].Alerts[i]
		if patch.Reason != nil {
			a.Reason = *patch.Reason
		}
		if patch.Value != nil {
			a.Value = *patch.Value
		}
		if patch.ChargeDate != nil {
			a.ChargeDate = *patch.ChargeDate
		}
		if patch.Recurrence != nil {
			a.Recurrence = *patch.Recurrence
		}
		found = true
		break
	}
	if !found {
		return fmt.Errorf("alert %s: %w", id, repository.ErrNotFound)
	}
	return s.persistLocked(ctx, next)
}

func (s *LocalStore) DeleteAlert(ctx context.Context, contactID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(contactID)
	if err != nil {
		return err
	}

	next := s.cloneLocked(idx)
	kept := next[idx].Alerts[:0:0]
	for _, rec := range next[idx].Alerts {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(next[idx].Alerts) {
		return fmt.Errorf("alert %s: %w", id, repository.ErrNotFound)
	}
	next[idx].Alerts = kept
	return s.persistLocked(ctx, next)
}

func (s *LocalStore) SettleAlert(ctx context.Context, contactID, alertID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(contactID)
	if err != nil {
		return err
	}

	next := s.cloneLocked(idx)
	settled, _, err := billing.Settle(next[idx].Alerts, alertID)
	if err != nil {
		return err
	}
	next[idx].Alerts = settled
	return s.persistLocked(ctx, next)
}

// --- Internal notes ---

func (s *LocalStore) AddNote(ctx context.Context, contactID string, note domain.InternalNote) (*domain.InternalNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(contactID)
	if err != nil {
		return nil, err
	}

	note.ID = uuid.NewString()
	note.ContactID = contactID

	next := s.cloneLocked(idx)
	next[idx].InternalNotes = append(next[idx].InternalNotes, note)
	if err := s.persistLocked(ctx, next); err != nil {
		return nil, err
	}
	return &note, nil
}

func (s *LocalStore) UpdateNote(ctx context.Context, contactID, id string, content string, date domain.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(contactID)
	if err != nil {
		return err
	}

	next := s.cloneLocked(idx)
	found := false
	for i := range next[idx].InternalNotes {
		if next[idx].InternalNotes[i].ID != id {
			continue
		}
		next[idx].InternalNotes[i].Content = content
		next[idx].InternalNotes[i].Date = date
		found = true
		break
	}
	if !found {
		return fmt.Errorf("internal note %s: %w", id, repository.ErrNotFound)
	}
	return s.persistLocked(ctx, next)
}

func (s *LocalStore) DeleteNote(ctx context.Context, contactID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(contactID)
	if err != nil {
		return err
	}

	next := s.cloneLocked(idx)
	kept := next[idx].InternalNotes[:0:0]
	for _, rec := range next[idx].InternalNotes {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(next[idx].InternalNotes) {
		return fmt.Errorf("internal note %s: %w", id, repository.ErrNotFound)
	}
	next[idx].InternalNotes = kept
	return s.persistLocked(ctx, next)
}

// Reset drops the in-memory snapshot. The persisted copy is left alone so
// the next login can reload it.
func (s *LocalStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = []domain.ContactWithDetails{}
}

func (s *LocalStore) Close() error { return nil }
