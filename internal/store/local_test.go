package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/thiagovferrari/crm2026/internal/domain"
	"github.com/thiagovferrari/crm2026/internal/repository"
	"github.com/thiagovferrari/crm2026/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupKV(t *testing.T) store.KV {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return store.NewRedisKV(client)
}

func newLocalStore(t *testing.T, kv store.KV, userID string) *store.LocalStore {
	s, err := store.NewLocalStore(context.Background(), kv, userID, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestLocalStore_CreateAndList(t *testing.T) {
	ctx := context.Background()
	kv := setupKV(t)
	s := newLocalStore(t, kv, "user-1")

	created, err := s.Create(ctx, store.ContactInput{
		Name:    "Alice Martins",
		Company: "Acme Corp",
		Email:   "alice@acme.test",
		Status:  domain.StatusActive,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "user-1", created.UserID)

	contacts, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Alice Martins", contacts[0].Name)
	// Child collections are initialized, not nil.
	assert.NotNil(t, contacts[0].Interactions)
	assert.NotNil(t, contacts[0].Alerts)
}

func TestLocalStore_SurvivesReload(t *testing.T) {
	ctx := context.Background()
	kv := setupKV(t)
	s := newLocalStore(t, kv, "user-1")

	created, err := s.Create(ctx, store.ContactInput{Name: "Alice", Status: domain.StatusActive})
	require.NoError(t, err)
	_, err = s.AddNote(ctx, created.ID, domain.InternalNote{Content: "first note", Date: domain.Today()})
	require.NoError(t, err)

	// A new store over the same KV sees the persisted collection.
	reloaded := newLocalStore(t, kv, "user-1")
	contacts, err := reloaded.List(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	require.Len(t, contacts[0].InternalNotes, 1)
	assert.Equal(t, "first note", contacts[0].InternalNotes[0].Content)
}

func TestLocalStore_OwnershipFilterOnLoad(t *testing.T) {
	ctx := context.Background()
	kv := setupKV(t)

	s1 := newLocalStore(t, kv, "user-1")
	_, err := s1.Create(ctx, store.ContactInput{Name: "Mine", Status: domain.StatusActive})
	require.NoError(t, err)

	// Another user over its own key sees nothing.
	s2 := newLocalStore(t, kv, "user-2")
	contacts, err := s2.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestLocalStore_DeleteRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	kv := setupKV(t)
	s := newLocalStore(t, kv, "user-1")

	created, err := s.Create(ctx, store.ContactInput{Name: "Alice", Status: domain.StatusActive})
	require.NoError(t, err)

	err = s.Delete(ctx, created.ID, false)
	assert.ErrorIs(t, err, store.ErrNotConfirmed)

	contacts, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, contacts, 1)

	require.NoError(t, s.Delete(ctx, created.ID, true))
	contacts, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestLocalStore_UpdatePatchesOnlyGivenFields(t *testing.T) {
	ctx := context.Background()
	kv := setupKV(t)
	s := newLocalStore(t, kv, "user-1")

	created, err := s.Create(ctx, store.ContactInput{
		Name:    "Alice",
		Company: "Acme",
		Status:  domain.StatusProspect,
	})
	require.NoError(t, err)

	status := domain.StatusActive
	require.NoError(t, s.Update(ctx, created.ID, repository.ContactPatch{Status: &status}))

	contacts, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, domain.StatusActive, contacts[0].Status)
	assert.Equal(t, "Alice", contacts[0].Name)
	assert.Equal(t, "Acme", contacts[0].Company)
}

func TestLocalStore_FinancialStatusDerivedOnWrite(t *testing.T) {
	ctx := context.Background()
	kv := setupKV(t)
	s := newLocalStore(t, kv, "user-1")

	created, err := s.Create(ctx, store.ContactInput{Name: "Alice", Status: domain.StatusActive})
	require.NoError(t, err)

	rec, err := s.AddFinancial(ctx, created.ID, domain.FinancialRecord{
		ServiceName:  "Website redesign",
		ValueCharged: 1200,
		ValuePaid:    0,
		Status:       domain.FinancialPaid, // client lie, must be overridden
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FinancialPending, rec.Status)

	rec.ValuePaid = 1200
	rec.Status = domain.FinancialPending
	require.NoError(t, s.UpdateFinancial(ctx, created.ID, *rec))

	contacts, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, contacts[0].Financials, 1)
	assert.Equal(t, domain.FinancialPaid, contacts[0].Financials[0].Status)
}

func TestLocalStore_SettleAlert(t *testing.T) {
	ctx := context.Background()
	kv := setupKV(t)
	s := newLocalStore(t, kv, "user-1")

	created, err := s.Create(ctx, store.ContactInput{Name: "Alice", Status: domain.StatusActive})
	require.NoError(t, err)

	once, err := s.AddAlert(ctx, created.ID, domain.BillingAlert{
		Reason:     "Setup fee",
		Value:      300,
		ChargeDate: domain.NewDate(2024, time.May, 1),
		Recurrence: domain.RecurrenceOnce,
	})
	require.NoError(t, err)
	monthly, err := s.AddAlert(ctx, created.ID, domain.BillingAlert{
		Reason:     "Hosting",
		Value:      50,
		ChargeDate: domain.NewDate(2024, time.May, 10),
		Recurrence: domain.RecurrenceMonthly,
	})
	require.NoError(t, err)

	require.NoError(t, s.SettleAlert(ctx, created.ID, once.ID))
	require.NoError(t, s.SettleAlert(ctx, created.ID, monthly.ID))

	contacts, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, contacts[0].Alerts, 1)
	assert.Equal(t, monthly.ID, contacts[0].Alerts[0].ID)
	assert.Equal(t, "2024-06-10", contacts[0].Alerts[0].ChargeDate.String())
}

func TestLocalStore_MutationOnMissingContact(t *testing.T) {
	ctx := context.Background()
	kv := setupKV(t)
	s := newLocalStore(t, kv, "user-1")

	_, err := s.AddInteraction(ctx, "no-such-contact", domain.Interaction{
		Kind:    domain.InteractionCall,
		Content: "intro call",
		Date:    domain.Today(),
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLocalStore_ResetKeepsPersistedCopy(t *testing.T) {
	ctx := context.Background()
	kv := setupKV(t)
	s := newLocalStore(t, kv, "user-1")

	_, err := s.Create(ctx, store.ContactInput{Name: "Alice", Status: domain.StatusActive})
	require.NoError(t, err)

	s.Reset()
	contacts, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, contacts)

	// The durable copy is untouched; a fresh store reloads it.
	reloaded := newLocalStore(t, kv, "user-1")
	contacts, err = reloaded.List(ctx)
	require.NoError(t, err)
	assert.Len(t, contacts, 1)
}
