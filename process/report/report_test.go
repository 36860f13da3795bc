package report

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

func day(s string) time.Time {
	t, _ := time.Parse(models.DateLayout, s)
	return t
}

func seed(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{DSN: filepath.Join(t.TempDir(), "report.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db, &models.User{}, &models.Statement{}))

	alice := models.User{Email: "alice@example.com", PasswordHash: []byte("x")}
	bob := models.User{Email: "bob@example.com", PasswordHash: []byte("x")}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)

	rows := []models.Statement{
		{UserID: alice.ID, Date: day("2024-02-29"), Name: "Feb", Amount: 1, Category: "Misc"},
		{UserID: alice.ID, Date: day("2024-03-01"), Name: "Rent", Amount: 1000, Category: "Home"},
		{UserID: alice.ID, Date: day("2024-03-15"), Name: "Power", Amount: 234.5, Category: "Home"},
		{UserID: alice.ID, Date: day("2024-03-31"), Name: "Lunch", Amount: 12.25, Category: "Food"},
		{UserID: alice.ID, Date: day("2024-04-01"), Name: "April", Amount: 5, Category: "Misc"},
		{UserID: bob.ID, Date: day("2024-03-10"), Name: "Bob", Amount: 99, Category: "Home"},
	}
	require.NoError(t, db.Create(&rows).Error)
	return db
}

func TestMonthBounds(t *testing.T) {
	start, end, err := MonthBounds("2024-12")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), end)

	_, _, err = MonthBounds("2024/12")
	assert.Error(t, err)
}

func TestMonthly(t *testing.T) {
	db := seed(t)

	s, err := Monthly(context.Background(), db, "alice@example.com", "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, "1246.75", s.Total.StringFixed(2))
	require.Len(t, s.Categories, 2)
	assert.Equal(t, "Food", s.Categories[0].Category)
	assert.Equal(t, "Home", s.Categories[1].Category)
	assert.Equal(t, 2, s.Categories[1].Count)
	assert.Equal(t, "Rent", s.Rows[0].Name)
	assert.Equal(t, "Lunch", s.Rows[2].Name)

	_, err = Monthly(context.Background(), db, "nobody@example.com", "2024-03")
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestWrite(t *testing.T) {
	db := seed(t)
	s, err := Monthly(context.Background(), db, "alice@example.com", "2024-03")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, s, false))
	out := buf.String()
	assert.Contains(t, out, "records=3 total_amount=1,246.75")
	assert.Contains(t, out, "Home")
	assert.NotContains(t, out, "|Rent|")

	buf.Reset()
	require.NoError(t, Write(&buf, s, true))
	assert.Contains(t, buf.String(), "|2024-03-15|Power|234.50|Home")
}
