// Command import_statements loads a CSV of statements (the /export/csv layout,
// ID column optional) into one user's ledger.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"ledger/models"
	"ledger/pkg/config"
	"ledger/pkg/database"
	"ledger/pkg/form"

	"gorm.io/gorm"
)

type record struct {
	line int
	st   models.Statement
}

func main() {
	file := flag.String("file", "", "CSV file to import")
	email := flag.String("email", "", "e-mail of the user that will own the rows")
	dry := flag.Bool("dry-run", true, "dry-run: don't write to DB")
	flag.Parse()
	if *file == "" || *email == "" {
		log.Fatal("--file and --email are required")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("open %s: %v", *file, err)
	}
	defer f.Close()
	records, errs := parseCSV(f)
	for _, err := range errs {
		fmt.Println("SKIP:", err)
	}

	cfg, err := config.Load("", "")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer database.Close(db)

	n, err := importRecords(context.Background(), db, *email, records, *dry, os.Stdout)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}
	fmt.Printf("imported=%d skipped=%d\n", n, len(errs))
}

// parseCSV reads a header row then one statement per line. Bad lines are
// reported and skipped.
func parseCSV(r io.Reader) ([]record, []error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("read header: %w", err)}
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"date", "name", "amount", "category"} {
		if _, ok := col[name]; !ok {
			return nil, []error{fmt.Errorf("header: missing column %q", name)}
		}
	}

	var out []record
	var errs []error
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		get := func(name string) string {
			if i := col[name]; i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		st, err := toStatement(get("date"), get("name"), get("amount"), get("category"))
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %s", line, form.Message(err)))
			continue
		}
		out = append(out, record{line: line, st: st})
	}
	return out, errs
}

func toStatement(date, name, amount, category string) (models.Statement, error) {
	st, err := form.ValidateStatement(date, name, amount, category)
	if err != nil {
		return models.Statement{}, err
	}
	return models.Statement{Date: st.Date, Name: st.Name, Amount: st.Amount, Category: st.Category}, nil
}

func importRecords(ctx context.Context, db *gorm.DB, email string, records []record, dry bool, w io.Writer) (int, error) {
	var user models.User
	if err := db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return 0, fmt.Errorf("user not found: %w", err)
	}
	if dry {
		for _, r := range records {
			fmt.Fprintf(w, "DRY: line %d would create %s|%s|%.2f|%s\n", r.line, r.st.DateString(), r.st.Name, r.st.Amount, r.st.Category)
		}
		return 0, nil
	}
	rows := make([]models.Statement, 0, len(records))
	for _, r := range records {
		st := r.st
		st.UserID = user.ID
		rows = append(rows, st)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := db.WithContext(ctx).CreateInBatches(&rows, 100).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}
