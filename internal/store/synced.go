package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/thiagovferrari/crm2026/internal/billing"
	"github.com/thiagovferrari/crm2026/internal/domain"
	"github.com/thiagovferrari/crm2026/internal/notify"
	"github.com/thiagovferrari/crm2026/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const refreshTimeout = 10 * time.Second

// SyncedRepos 远程同步模式依赖的Repository集合
type SyncedRepos struct {
	Contacts     repository.ContactsRepository
	Interactions repository.InteractionsRepository
	Financials   repository.FinancialsRepository
	Alerts       repository.AlertsRepository
	Notes        repository.NotesRepository
}

// SyncedStore 远程同步模式 view-model store
//
// Postgres is authoritative. Mutations go straight to the repositories; the
// visible snapshot only changes by re-fetching the full collection, either
// directly after a mutation settles or through the debounced change-feed
// refresh. There is no ordering guarantee between the two paths beyond "last
// full snapshot wins". Ownership filtering is delegated to the repository
// query.
type SyncedStore struct {
	repos      SyncedRepos
	publisher  *notify.Publisher
	subscriber *notify.Subscriber
	userID     string
	debounce   time.Duration
	logger     *zap.Logger

	mu       sync.Mutex
	snapshot []domain.ContactWithDetails
	loaded   bool

	// refresh state machine: idle (timer == nil, !refreshing),
	// pending (timer != nil), refreshing (refreshing == true).
	timer      *time.Timer
	refreshing bool
	dirty      bool
	closed     bool
}

var _ ContactStore = (*SyncedStore)(nil)

// NewSyncedStore builds the store. Subscriber may be nil (no push feed);
// call Start to begin consuming change events.
func NewSyncedStore(repos SyncedRepos, publisher *notify.Publisher, subscriber *notify.Subscriber, userID string, debounce time.Duration, logger *zap.Logger) *SyncedStore {
	if debounce <= 0 {
		debounce = time.Second
	}
	return &SyncedStore{
		repos:      repos,
		publisher:  publisher,
		subscriber: subscriber,
		userID:     userID,
		debounce:   debounce,
		logger:     logger,
	}
}

// Start subscribes to the change feed. Every event (re)schedules the
// debounced refresh; the event payload itself is never applied incrementally.
func (s *SyncedStore) Start(ctx context.Context) error {
	if s.subscriber == nil {
		return nil
	}
	return s.subscriber.Start(ctx, func(notify.Event) {
		s.ScheduleRefresh()
	})
}

// ScheduleRefresh arms (or re-arms) the debounce timer: a burst of change
// events collapses into one full re-fetch, debounce after the last event.
func (s *SyncedStore) ScheduleRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.debouncedRefresh)
}

func (s *SyncedStore) debouncedRefresh() {
	s.mu.Lock()
	s.timer = nil
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.refreshing {
		// Single in-flight guard: remember that another refresh is owed.
		s.dirty = true
		s.mu.Unlock()
		return
	}
	s.refreshing = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	err := s.refreshNow(ctx)
	cancel()
	if err != nil {
		s.logger.Warn("Debounced refresh failed", zap.Error(err))
	}

	s.mu.Lock()
	s.refreshing = false
	rearm := s.dirty && !s.closed
	s.dirty = false
	s.mu.Unlock()

	if rearm {
		s.ScheduleRefresh()
	}
}

// refreshNow fetches the full authoritative snapshot and swaps it in.
func (s *SyncedStore) refreshNow(ctx context.Context) error {
	contacts, err := s.repos.Contacts.ListWithDetails(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("failed to refresh contacts: %w", err)
	}

	s.mu.Lock()
	s.snapshot = contacts
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// refreshAfterMutation is the direct re-fetch path. The mutation already
// succeeded, so a failed refresh is only logged: the push-driven refresh
// will converge the snapshot.
func (s *SyncedStore) refreshAfterMutation(ctx context.Context) {
	if err := s.refreshNow(ctx); err != nil {
		s.logger.Warn("Post-mutation refresh failed", zap.Error(err))
	}
}

func (s *SyncedStore) publish(ctx context.Context, table, action, recordID, contactID string) {
	if s.publisher != nil {
		s.publisher.Publish(ctx, table, action, recordID, contactID)
	}
}

func (s *SyncedStore) List(ctx context.Context) ([]domain.ContactWithDetails, error) {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()

	if !loaded {
		if err := s.refreshNow(ctx); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ContactWithDetails, len(s.snapshot))
	copy(out, s.snapshot)
	return out, nil
}

func (s *SyncedStore) Create(ctx context.Context, input ContactInput) (*domain.ContactWithDetails, error) {
	contact := domain.Contact{
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
	}
	if err := s.repos.Contacts.Create(ctx, &contact); err != nil {
		return nil, err
	}

	s.publish(ctx, notify.TableContacts, "insert", contact.ID, contact.ID)
	s.refreshAfterMutation(ctx)

	return &domain.ContactWithDetails{
		Contact:       contact,
		InternalNotes: []domain.InternalNote{},
		Interactions:  []domain.Interaction{},
		Financials:    []domain.FinancialRecord{},
		Alerts:        []domain.BillingAlert{},
	}, nil
}

func (s *SyncedStore) Update(ctx context.Context, contactID string, patch repository.ContactPatch) error {
	if err := s.repos.Contacts.Update(ctx, s.userID, contactID, patch); err != nil {
		return err
	}
	s.publish(ctx, notify.TableContacts, "update", contactID, contactID)
	s.refreshAfterMutation(ctx)
	return nil
}

func (s *SyncedStore) Delete(ctx context.Context, contactID string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := s.repos.Contacts.Delete(ctx, s.userID, contactID); err != nil {
		return err
	}
	s.publish(ctx, notify.TableContacts, "delete", contactID, contactID)
	s.refreshAfterMutation(ctx)
	return nil
}

// --- Interactions ---

func (s *SyncedStore) AddInteraction(ctx context.Context, contactID string, rec domain.Interaction) (*domain.Interaction, error) {
	rec.ID = uuid.NewString()
	rec.ContactID = contactID
	if err := s.repos.Interactions.Create(ctx, s.userID, &rec); err != nil {
		return nil, err
	}
	s.publish(ctx, notify.TableInteractions, "insert", rec.ID, contactID)
	s.refreshAfterMutation(ctx)
	return &rec, nil
}

func (s *SyncedStore) UpdateInteraction(ctx context.Context, contactID, id string, patch repository.InteractionPatch) error {
	if err := s.repos.Interactions.Update(ctx, s.userID, id, patch); err != nil {
		return err
	}
	s.publish(ctx, notify.TableInteractions, "update", id, contactID)
	s.refreshAfterMutation(ctx)
	return nil
}

func (s *SyncedStore) DeleteInteraction(ctx context.Context, contactID, id string) error {
	if err := s.repos.Interactions.Delete(ctx, s.userID, id); err != nil {
		return err
	}
	s.publish(ctx, notify.TableInteractions, "delete", id, contactID)
	s.refreshAfterMutation(ctx)
	return nil
}

// --- Financials ---

func (s *SyncedStore) AddFinancial(ctx context.Context, contactID string, rec domain.FinancialRecord) (*domain.FinancialRecord, error) {
	rec.ID = uuid.NewString()
	rec.ContactID = contactID
	rec.CreatedAt = time.Now().UTC()
	rec.Normalize()
	if err := s.repos.Financials.Create(ctx, s.userID, &rec); err != nil {
		return nil, err
	}
	s.publish(ctx, notify.TableFinancials, "insert", rec.ID, contactID)
	s.refreshAfterMutation(ctx)
	return &rec, nil
}

func (s *SyncedStore) UpdateFinancial(ctx context.Context, contactID string, rec domain.FinancialRecord) error {
	rec.ContactID = contactID
	rec.Normalize()
	if err := s.repos.Financials.Update(ctx, s.userID, &rec); err != nil {
		return err
	}
	s.publish(ctx, notify.TableFinancials, "update", rec.ID, contactID)
	s.refreshAfterMutation(ctx)
	return nil
}

func (s *SyncedStore) DeleteFinancial(ctx context.Context, contactID, id string) error {
	if err := s.repos.Financials.Delete(ctx, s.userID, id); err != nil {
		return err
	}
	s.publish(ctx, notify.TableFinancials, "delete", id, contactID)
	s.refreshAfterMutation(ctx)
	return nil
}

// --- Alerts ---

func (s *SyncedStore) AddAlert(ctx context.Context, contactID string, alert domain.BillingAlert) (*domain.BillingAlert, error) {
	alert.ID = uuid.NewString()
	alert.ContactID = contactID
	alert.CreatedAt = time.Now().UTC()
	if err := s.repos.Alerts.Create(ctx, s.userID, &alert); err != nil {
		return nil, err
	}
	s.publish(ctx, notify.TableAlerts, "insert", alert.ID, contactID)
	s.refreshAfterMutation(ctx)
	return &alert, nil
}

func (s *SyncedStore) UpdateAlert(ctx context.Context, contactID, id string, patch repository.AlertPatch) error {
	if err := s.repos.Alerts.Update(ctx, s.userID, id, patch); err != nil {
		return err
	}
	s.publish(ctx, notify.TableAlerts, "update", id, contactID)
	s.refreshAfterMutation(ctx)
	return nil
}

func (s *SyncedStore) DeleteAlert(ctx context.Context, contactID, id string) error {
	if err := s.repos.Alerts.Delete(ctx, s.userID, id); err != nil {
		return err
	}
	s.publish(ctx, notify.TableAlerts, "delete", id, contactID)
	s.refreshAfterMutation(ctx)
	return nil
}

func (s *SyncedStore) SettleAlert(ctx context.Context, contactID, alertID string) error {
	current, err := s.repos.Alerts.ListByContact(ctx, s.userID, contactID)
	if err != nil {
		return err
	}

	settled, outcome, err := billing.Settle(current, alertID)
	if err != nil {
		return err
	}

	if outcome == billing.OutcomeRemoved {
		if err := s.repos.Alerts.Delete(ctx, s.userID, alertID); err != nil {
			return err
		}
		s.publish(ctx, notify.TableAlerts, "delete", alertID, contactID)
	} else {
		var next domain.Date
		for _, a := range settled {
			if a.ID == alertID {
				next = a.ChargeDate
				break
			}
		}
		if err := s.repos.Alerts.UpdateChargeDate(ctx, s.userID, alertID, next); err != nil {
			return err
		}
		s.publish(ctx, notify.TableAlerts, "update", alertID, contactID)
	}

	s.refreshAfterMutation(ctx)
	return nil
}

// --- Internal notes ---

func (s *SyncedStore) AddNote(ctx context.Context, contactID string, note domain.InternalNote) (*domain.InternalNote, error) {
	note.ID = uuid.NewString()
	note.ContactID = contactID
	if err := s.repos.Notes.Create(ctx, s.userID, &note); err != nil {
		return nil, err
	}
	s.publish(ctx, notify.TableInternalNotes, "insert", note.ID, contactID)
	s.refreshAfterMutation(ctx)
	return &note, nil
}

func (s *SyncedStore) UpdateNote(ctx context.Context, contactID, id string, content string, date domain.Date) error {
	if err := s.repos.Notes.Update(ctx, s.userID, id, content, date); err != nil {
		return err
	}
	s.publish(ctx, notify.TableInternalNotes, "update", id, contactID)
	s.refreshAfterMutation(ctx)
	return nil
}

func (s *SyncedStore) DeleteNote(ctx context.Context, contactID, id string) error {
	if err := s.repos.Notes.Delete(ctx, s.userID, id); err != nil {
		return err
	}
	s.publish(ctx, notify.TableInternalNotes, "delete", id, contactID)
	s.refreshAfterMutation(ctx)
	return nil
}

// Reset drops the snapshot; the next List re-fetches.
func (s *SyncedStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = nil
	s.loaded = false
}

// Close cancels the pending debounce timer and unsubscribes the change feed.
func (s *SyncedStore) Close() error {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if s.subscriber != nil {
		return s.subscriber.Stop()
	}
	return nil
}
