package sanitize

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"ledger/models"
	"ledger/pkg/config"
	"ledger/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seeded(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{DSN: filepath.Join(t.TempDir(), "sanitize.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db, &models.User{}, &models.Statement{}, &models.Session{}))

	u := models.User{Email: "a@example.com", PasswordHash: []byte("x")}
	require.NoError(t, db.Create(&u).Error)
	require.NoError(t, db.Create(&models.Statement{UserID: u.ID, Date: time.Now().UTC(), Name: "n", Amount: 1, Category: "c"}).Error)
	require.NoError(t, db.Create(&models.Session{UserID: u.ID, TokenHash: "h", ExpiresAt: time.Now().UTC()}).Error)
	return db
}

func count(t *testing.T, db *gorm.DB, table string) int64 {
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}

func TestParseTables(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ParseTables(" a, ,b ,"))
	assert.Empty(t, ParseTables(""))
}

func TestDryRunChangesNothing(t *testing.T) {
	db := seeded(t)
	var out bytes.Buffer
	done, err := Run(context.Background(), db, Options{DryRun: true}, &out)
	require.NoError(t, err)
	assert.Empty(t, done)
	assert.Contains(t, out.String(), "statements (1 rows)")
	assert.Contains(t, out.String(), "dry-run enabled")
	assert.Equal(t, int64(1), count(t, db, "users"))
}

func TestRequiresConfirmation(t *testing.T) {
	db := seeded(t)
	var out bytes.Buffer
	done, err := Run(context.Background(), db, Options{}, &out)
	require.NoError(t, err)
	assert.Empty(t, done)
	assert.Contains(t, out.String(), "Pass --yes")
	assert.Equal(t, int64(1), count(t, db, "statements"))
}

func TestTruncates(t *testing.T) {
	db := seeded(t)
	var out bytes.Buffer
	done, err := Run(context.Background(), db, Options{Yes: true, Tables: []string{"statements", "bad;name", "missing_table", "sessions", "users"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"statements", "sessions", "users"}, done)
	assert.Contains(t, out.String(), "skipping invalid table name 'bad;name'")
	assert.Contains(t, out.String(), "table missing_table not found")
	for _, table := range DefaultTables {
		assert.Zero(t, count(t, db, table), table)
	}
}
