package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/thiagovferrari/crm2026/internal/repository"
	"github.com/thiagovferrari/crm2026/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
)

const sessionKeyPrefix = "crm:session:"

// Session 会话对象（auth collaborator 的 {user id, email}）
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// AuthService 认证服务接口
type AuthService interface {
	Register(ctx context.Context, email, password string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, token string) error
	// SessionFromToken resolves the session carried by a request.
	SessionFromToken(ctx context.Context, token string) (*Session, error)
	// OnSessionChange registers a callback invoked with nil when a session
	// disappears (logout); consumers use it to reset local state.
	OnSessionChange(fn func(*Session))
}

type authService struct {
	users      repository.UsersRepository
	kv         store.KV
	sessionTTL time.Duration
	logger     *zap.Logger

	mu        sync.Mutex
	callbacks []func(*Session)
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(users repository.UsersRepository, kv store.KV, sessionTTL time.Duration, logger *zap.Logger) AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &authService{
		users:      users,
		kv:         kv,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// hashPassword SHA256(password)，只依赖密码本身
func hashPassword(password string) []byte {
	h := sha256.Sum256([]byte(password))
	return h[:]
}

func (s *authService) Register(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("valid email is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	user := &repository.User{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: hashPassword(password),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.UserID))
	return s.createSession(ctx, user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		s.logger.Warn("Login failed: missing credentials")
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Login failed: unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	if subtle.ConstantTimeCompare(user.PasswordHash, hashPassword(password)) != 1 {
		s.logger.Warn("Login failed: wrong password", zap.String("user_id", user.UserID))
		return nil, ErrInvalidCredentials
	}

	return s.createSession(ctx, user)
}

func (s *authService) createSession(ctx context.Context, user *repository.User) (*Session, error) {
	session := &Session{
		Token:  uuid.NewString(),
		UserID: user.UserID,
		Email:  user.Email,
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.kv.Set(ctx, sessionKeyPrefix+session.Token, string(payload), s.sessionTTL); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.notify(session)
	return session, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.kv.Delete(ctx, sessionKeyPrefix+token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.notify(nil)
	return nil
}

func (s *authService) SessionFromToken(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionExpired
	}
	raw, err := s.kv.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		if err == store.ErrMiss {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

func (s *authService) OnSessionChange(fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

func (s *authService) notify(session *Session) {
	s.mu.Lock()
	callbacks := append([]func(*Session){}, s.callbacks...)
	s.mu.Unlock()
	for _, fn := range callbacks {
		fn(session)
	}
}
