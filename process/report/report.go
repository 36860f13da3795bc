// Package report summarises one user's statements for a calendar month.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"ledger/models"
	"ledger/pkg/currency"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrUnknownUser is returned when no user has the requested e-mail.
var ErrUnknownUser = errors.New("user not found")

const MonthLayout = "2006-01"

type CategoryTotal struct {
	Category string
	Count    int
	Total    decimal.Decimal
}

// Summary is a month-bounded (UTC) view of one user's statements.
type Summary struct {
	Email      string
	Month      string
	Count      int
	Total      decimal.Decimal
	Categories []CategoryTotal
	Rows       []models.Statement
}

// MonthBounds returns [start, end) for a YYYY-MM month in UTC.
func MonthBounds(month string) (time.Time, time.Time, error) {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", month, err)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

// Monthly loads the statements of email dated within month.
func Monthly(ctx context.Context, db *gorm.DB, email, month string) (*Summary, error) {
	start, end, err := MonthBounds(month)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	var rows []models.Statement
	if err := db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", user.ID, start, end).
		Order("date, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch statements: %w", err)
	}

	s := &Summary{Email: user.Email, Month: month, Count: len(rows), Total: decimal.Zero, Rows: rows}
	byCat := map[string]*CategoryTotal{}
	for _, r := range rows {
		amt := decimal.NewFromFloat(r.Amount)
		s.Total = s.Total.Add(amt)
		ct, ok := byCat[r.Category]
		if !ok {
			ct = &CategoryTotal{Category: r.Category, Total: decimal.Zero}
			byCat[r.Category] = ct
		}
		ct.Count++
		ct.Total = ct.Total.Add(amt)
	}
	for _, ct := range byCat {
		s.Categories = append(s.Categories, *ct)
	}
	sort.Slice(s.Categories, func(i, j int) bool { return s.Categories[i].Category < s.Categories[j].Category })
	return s, nil
}

// Write prints the summary, and each row when list is set.
func Write(w io.Writer, s *Summary, list bool) error {
	if _, err := fmt.Fprintf(w, "Report for user=%s month=%s (UTC):\n", s.Email, s.Month); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  records=%d total_amount=%s\n", s.Count, currency.Format(s.Total, currency.ZeroPlaceholder)); err != nil {
		return err
	}
	for _, ct := range s.Categories {
		if _, err := fmt.Fprintf(w, "  %-20s %4d %14s\n", ct.Category, ct.Count, currency.Format(ct.Total, currency.ZeroPlaceholder)); err != nil {
			return err
		}
	}
	if !list {
		return nil
	}
	for _, r := range s.Rows {
		if _, err := fmt.Fprintf(w, "%d|%s|%s|%s|%s\n", r.ID, r.DateString(), r.Name, currency.Format(r.Amount, currency.ZeroPlaceholder), r.Category); err != nil {
			return err
		}
	}
	return nil
}
