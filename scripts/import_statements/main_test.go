package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"ledger/models"
	"ledger/pkg/config"
	"ledger/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `ID,Date,Name,Amount,Category
1,2024-06-01,"Books, used",12.50,Education
2,2024-06-02,Train,"1,007.25",Travel
3,06/03/2024,Bad date,1,X
4,2024-06-04,,5,X
`

func TestParseCSV(t *testing.T) {
	records, errs := parseCSV(strings.NewReader(sample))
	require.Len(t, records, 2)
	assert.Equal(t, "Books, used", records[0].st.Name)
	assert.Equal(t, 1007.25, records[1].st.Amount)
	assert.Equal(t, "2024-06-02", records[1].st.DateString())

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "line 4: Date must be a date")
	assert.Contains(t, errs[1].Error(), "line 5: All fields are required.")
}

func TestParseCSVCountsCharacters(t *testing.T) {
	long := strings.Repeat("ж", 60)
	tooLong := strings.Repeat("ж", 101)
	in := "Date,Name,Amount,Category\n2024-06-01," + long + ",3,Food\n2024-06-02," + tooLong + ",3,Food\n"

	records, errs := parseCSV(strings.NewReader(in))
	require.Len(t, records, 1)
	assert.Equal(t, long, records[0].st.Name)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "line 3: Name must be at most 100 characters.")
}

func TestParseCSVMissingColumn(t *testing.T) {
	_, errs := parseCSV(strings.NewReader("Date,Name,Amount\n2024-01-01,x,1\n"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), `missing column "category"`)
}

func TestImportRecords(t *testing.T) {
	db, err := database.Open(config.DatabaseConfig{DSN: filepath.Join(t.TempDir(), "import.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db, &models.User{}, &models.Statement{}))
	u := models.User{Email: "owner@example.com", PasswordHash: []byte("x")}
	require.NoError(t, db.Create(&u).Error)

	records, _ := parseCSV(strings.NewReader(sample))
	ctx := context.Background()

	var out bytes.Buffer
	n, err := importRecords(ctx, db, "owner@example.com", records, true, &out)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Contains(t, out.String(), "DRY: line 2 would create 2024-06-01|Books, used|12.50|Education")

	n, err = importRecords(ctx, db, "Owner@example.com", records, false, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	var rows []models.Statement
	require.NoError(t, db.Where("user_id = ?", u.ID).Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "Train", rows[1].Name)

	_, err = importRecords(ctx, db, "ghost@example.com", records, false, &out)
	assert.Error(t, err)
}
