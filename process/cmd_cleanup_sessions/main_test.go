package main

import (
	"path/filepath"
	"testing"
	"time"

	"ledger/models"
	"ledger/pkg/config"
	"ledger/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupSessions(t *testing.T) {
	gdb, err := database.Open(config.DatabaseConfig{DSN: filepath.Join(t.TempDir(), "cleanup.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(gdb) })
	require.NoError(t, database.Migrate(gdb, &models.User{}, &models.Session{}))

	now := time.Now().UTC()
	alice := models.User{Email: "alice@example.com", PasswordHash: []byte("x")}
	bob := models.User{Email: "bob@example.com", PasswordHash: []byte("x")}
	require.NoError(t, gdb.Create(&alice).Error)
	require.NoError(t, gdb.Create(&bob).Error)
	require.NoError(t, gdb.Create(&[]models.Session{
		{UserID: alice.ID, TokenHash: "a-live", ExpiresAt: now.Add(time.Hour)},
		{UserID: alice.ID, TokenHash: "a-expired", ExpiresAt: now.Add(-time.Hour)},
		{UserID: bob.ID, TokenHash: "b-revoked", ExpiresAt: now.Add(time.Hour), Revoked: true},
		{UserID: bob.ID, TokenHash: "b-live", ExpiresAt: now.Add(time.Hour)},
	}).Error)

	db, err := gdb.DB()
	require.NoError(t, err)

	where, args := sessionFilter(false, "alice@example.com", now)
	n, err := countSessions(db, where, args)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	where, args = sessionFilter(false, "", now)
	deleted, err := deleteSessions(db, where, args)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	where, args = sessionFilter(true, "bob@example.com", now)
	deleted, err = deleteSessions(db, where, args)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	var left []models.Session
	require.NoError(t, gdb.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "a-live", left[0].TokenHash)
}

func TestSessionFilterAllWithoutEmail(t *testing.T) {
	where, args := sessionFilter(true, "", time.Now())
	assert.Equal(t, "1 = 1", where)
	assert.Empty(t, args)
}
