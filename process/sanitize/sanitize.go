// Package sanitize empties ledger tables, for resetting demo and staging
// databases.
package sanitize

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// DefaultTables lists the ledger tables children first, so deletes never trip
// a foreign key.
var DefaultTables = []string{"statements", "sessions", "users"}

var nameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type Options struct {
	Tables []string
	DryRun bool
	Yes    bool
}

// ParseTables splits a comma-separated list, dropping blanks.
func ParseTables(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Run reports the row count of every requested table that exists and, when
// not a dry run and confirmed, empties them. It returns the tables emptied.
func Run(ctx context.Context, db *gorm.DB, opts Options, w io.Writer) ([]string, error) {
	tables := opts.Tables
	if len(tables) == 0 {
		tables = DefaultTables
	}

	existing := make([]string, 0, len(tables))
	for _, t := range tables {
		if !nameRe.MatchString(t) {
			fmt.Fprintf(w, "warning: skipping invalid table name '%s'\n", t)
			continue
		}
		if !db.Migrator().HasTable(t) {
			fmt.Fprintf(w, "info: table %s not found, skipping\n", t)
			continue
		}
		existing = append(existing, t)
	}
	if len(existing) == 0 {
		fmt.Fprintln(w, "no requested tables present in the database; nothing to do")
		return nil, nil
	}

	fmt.Fprintln(w, "Tables considered for truncation:")
	for _, t := range existing {
		var n int64
		if err := db.WithContext(ctx).Table(t).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", t, err)
		}
		fmt.Fprintf(w, " - %s (%d rows)\n", t, n)
	}

	if opts.DryRun {
		fmt.Fprintln(w, "dry-run enabled; no changes will be made. Use --dry-run=false --yes to execute.")
		return nil, nil
	}
	if !opts.Yes {
		fmt.Fprintln(w, "Destructive operation. Pass --yes to confirm execution. Aborting.")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range statements(db, existing) {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("%s: %w", stmt, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(w, "Truncate completed.")
	return existing, nil
}

// statements builds the dialect-specific SQL. Names were validated above.
func statements(db *gorm.DB, tables []string) []string {
	quoted := make([]string, 0, len(tables))
	for _, t := range tables {
		quoted = append(quoted, fmt.Sprintf("\"%s\"", t))
	}
	if db.Dialector.Name() == "postgres" {
		return []string{fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))}
	}
	out := make([]string, 0, len(quoted))
	for _, q := range quoted {
		out = append(out, "DELETE FROM "+q)
	}
	return out
}
