package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ledger/models"
	"ledger/pkg/config"
	"ledger/pkg/database"
	"ledger/pkg/form"

	"gorm.io/gorm"
)

var errStatementNotFound = errors.New("statement not found")

// initDB opens the store and, unless disabled, migrates the schema. Users go
// first so the statements and sessions foreign keys have a target.
func initDB(cfg config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := migrateModels(db); err != nil {
			// a failure on one table doesn't block the others
			slog.Warn("migration incomplete", "error", err)
		}
	}
	return db, nil
}

func migrateModels(db *gorm.DB) error {
	return database.Migrate(db, &models.User{}, &models.Statement{}, &models.Session{})
}

// statementStore scopes every statement query to one owner.
type statementStore struct {
	db *gorm.DB
}

func (s *statementStore) create(ctx context.Context, userID uint, in form.Statement) (*models.Statement, error) {
	row := models.Statement{
		Date:     in.Date,
		Name:     in.Name,
		Amount:   in.Amount,
		Category: in.Category,
		UserID:   userID,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create statement: %w", err)
	}
	return &row, nil
}

// listByOwner returns the owner's rows in id order.
func (s *statementStore) listByOwner(ctx context.Context, userID uint) ([]models.Statement, error) {
	var rows []models.Statement
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	return rows, nil
}

func (s *statementStore) getOwned(ctx context.Context, userID, id uint) (*models.Statement, error) {
	var row models.Statement
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errStatementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get statement %d: %w", id, err)
	}
	return &row, nil
}

// deleteOwned is a no-op when the row is missing or belongs to someone else.
func (s *statementStore) deleteOwned(ctx context.Context, userID, id uint) (int64, error) {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Statement{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete statement %d: %w", id, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *statementStore) updateOwned(ctx context.Context, userID, id uint, in form.Statement) error {
	res := s.db.WithContext(ctx).Model(&models.Statement{}).
		Where("id = ? AND user_id = ?", id, userID).
		Select("date", "name", "amount", "category", "updated_at").
		Updates(models.Statement{Date: in.Date, Name: in.Name, Amount: in.Amount, Category: in.Category})
	if res.Error != nil {
		return fmt.Errorf("update statement %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return errStatementNotFound
	}
	return nil
}

func sumAmounts(rows []models.Statement) float64 {
	var total float64
	for _, r := range rows {
		total += r.Amount
	}
	return total
}
