package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/thiagovferrari/crm2026/internal/repository"
	"github.com/thiagovferrari/crm2026/internal/service"
	"github.com/thiagovferrari/crm2026/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupAuth(t *testing.T, ttl time.Duration) (service.AuthService, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	auth := service.NewAuthService(repository.NewMemoryUsersRepository(), store.NewRedisKV(client), ttl, zap.NewNop())
	return auth, mr
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	auth, _ := setupAuth(t, time.Hour)

	session, err := auth.Register(ctx, "Alice@Example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	assert.Equal(t, "alice@example.com", session.Email)

	login, err := auth.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, session.UserID, login.UserID)
	assert.NotEqual(t, session.Token, login.Token)
}

func TestAuth_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	auth, _ := setupAuth(t, time.Hour)

	_, err := auth.Register(ctx, "not-an-email", "s3cret-pass")
	assert.Error(t, err)

	_, err = auth.Register(ctx, "alice@example.com", "short")
	assert.Error(t, err)
}

func TestAuth_LoginRejectsWrongCredentials(t *testing.T) {
	ctx := context.Background()
	auth, _ := setupAuth(t, time.Hour)

	_, err := auth.Register(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = auth.Login(ctx, "alice@example.com", "wrong-pass")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = auth.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuth_SessionFromToken(t *testing.T) {
	ctx := context.Background()
	auth, _ := setupAuth(t, time.Hour)

	session, err := auth.Register(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	resolved, err := auth.SessionFromToken(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, resolved.UserID)

	_, err = auth.SessionFromToken(ctx, "bogus-token")
	assert.ErrorIs(t, err, service.ErrSessionExpired)

	_, err = auth.SessionFromToken(ctx, "")
	assert.ErrorIs(t, err, service.ErrSessionExpired)
}

func TestAuth_SessionExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	auth, mr := setupAuth(t, time.Minute)

	session, err := auth.Register(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = auth.SessionFromToken(ctx, session.Token)
	assert.ErrorIs(t, err, service.ErrSessionExpired)
}

func TestAuth_LogoutInvalidatesAndNotifies(t *testing.T) {
	ctx := context.Background()
	auth, _ := setupAuth(t, time.Hour)

	var gone bool
	auth.OnSessionChange(func(s *service.Session) {
		if s == nil {
			gone = true
		}
	})

	session, err := auth.Register(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, session.Token))
	assert.True(t, gone)

	_, err = auth.SessionFromToken(ctx, session.Token)
	assert.ErrorIs(t, err, service.ErrSessionExpired)
}
