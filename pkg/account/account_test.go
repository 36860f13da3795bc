package account

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"ledger/models"
	"ledger/pkg/config"
	"ledger/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{DSN: filepath.Join(t.TempDir(), "account.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db, &models.User{}))
	return NewService(db, bcrypt.MinCost), db
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, " Alice@Example.com ", "hunter2")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, []byte("hunter2"), u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword(u.PasswordHash, []byte("hunter2")))
}

func TestRegisterDuplicateLeavesTableUnchanged(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob@example.com", "first")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "BOB@example.com", "second")
	assert.ErrorIs(t, err, ErrEmailTaken)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// the original password still works
	_, err = svc.Authenticate(ctx, "bob@example.com", "first")
	assert.NoError(t, err)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registered, err := svc.Register(ctx, "carol@example.com", "right")
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "CAROL@example.com", "right")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)

	_, err = svc.Authenticate(ctx, "carol@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "right")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, "dave@example.com", "pw")
	require.NoError(t, err)

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "dave@example.com", got.Email)

	_, err = svc.Get(ctx, u.ID+100)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "erin@example.com", "oldpass")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.SetPassword(ctx, "erin@example.com", "short"), ErrPasswordTooShort)
	assert.ErrorIs(t, svc.SetPassword(ctx, "ghost@example.com", "longenough"), ErrUserNotFound)

	require.NoError(t, svc.SetPassword(ctx, "erin@example.com", "newpass"))
	_, err = svc.Authenticate(ctx, "erin@example.com", "oldpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "erin@example.com", "newpass")
	assert.NoError(t, err)
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.False(t, isUniqueConstraintError(nil))
	assert.True(t, isUniqueConstraintError(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: users.email")))
	assert.True(t, isUniqueConstraintError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email"`)))
	assert.False(t, isUniqueConstraintError(errors.New("connection refused")))
}
