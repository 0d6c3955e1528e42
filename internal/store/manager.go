package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/thiagovferrari/crm2026/internal/notify"
	"github.com/thiagovferrari/crm2026/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Mode 选择 view-model store 的同步模式
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeSynced Mode = "synced"
)

// Manager hands out one ContactStore per user and owns their lifecycle.
// Stores are created lazily on first use and torn down on Remove (session
// gone) or CloseAll (shutdown). The two disciplines are never mixed: the
// mode is fixed at construction.
type Manager struct {
	mode     Mode
	db       *sql.DB
	redis    *redis.Client
	kv       KV
	debounce time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	stores map[string]ContactStore
}

func NewManager(mode Mode, db *sql.DB, redisClient *redis.Client, kv KV, debounce time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		mode:     mode,
		db:       db,
		redis:    redisClient,
		kv:       kv,
		debounce: debounce,
		logger:   logger,
		stores:   make(map[string]ContactStore),
	}
}

// StoreFor returns the store bound to userID, creating it on first use.
func (m *Manager) StoreFor(ctx context.Context, userID string) (ContactStore, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if st, ok := m.stores[userID]; ok {
		return st, nil
	}

	var st ContactStore
	switch m.mode {
	case ModeLocal:
		local, err := NewLocalStore(ctx, m.kv, userID, m.logger)
		if err != nil {
			return nil, err
		}
		st = local
	case ModeSynced:
		repos := SyncedRepos{
			Contacts:     repository.NewPostgresContactsRepository(m.db),
			Interactions: repository.NewPostgresInteractionsRepository(m.db),
			Financials:   repository.NewPostgresFinancialsRepository(m.db),
			Alerts:       repository.NewPostgresAlertsRepository(m.db),
			Notes:        repository.NewPostgresNotesRepository(m.db),
		}
		publisher := notify.NewPublisher(m.redis, m.logger)
		subscriber := notify.NewSubscriber(m.redis, m.logger)
		synced := NewSyncedStore(repos, publisher, subscriber, userID, m.debounce, m.logger)
		if err := synced.Start(ctx); err != nil {
			_ = synced.Close()
			return nil, fmt.Errorf("failed to start change feed: %w", err)
		}
		st = synced
	default:
		return nil, fmt.Errorf("unknown store mode %q", m.mode)
	}

	m.stores[userID] = st
	return st, nil
}

// Remove tears down the store for a user whose session ended.
func (m *Manager) Remove(userID string) {
	m.mu.Lock()
	st, ok := m.stores[userID]
	delete(m.stores, userID)
	m.mu.Unlock()

	if ok {
		st.Reset()
		if err := st.Close(); err != nil {
			m.logger.Warn("Failed to close store", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

// ResetAll drops every in-memory snapshot (session disappeared).
func (m *Manager) ResetAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, st := range m.stores {
		st.Reset()
	}
}

// CloseAll tears down every store (shutdown).
func (m *Manager) CloseAll() {
	m.mu.Lock()
	stores := m.stores
	m.stores = make(map[string]ContactStore)
	m.mu.Unlock()

	for userID, st := range stores {
		if err := st.Close(); err != nil {
			m.logger.Warn("Failed to close store", zap.String("user_id", userID), zap.Error(err))
		}
	}
}
