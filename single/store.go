package single

import (
	"context"
	"errors"
	"fmt"

	"ledger/models"
	"ledger/pkg/database"
	"ledger/pkg/form"

	"gorm.io/gorm"
)

// ErrNotFound is returned when no row has the requested id.
var ErrNotFound = errors.New("statement not found")

// Migrate creates the statements table.
func Migrate(db *gorm.DB) error {
	return database.Migrate(db, &models.SharedStatement{})
}

// Store is the single-tenant statement table.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, in form.SharedStatement) (*models.SharedStatement, error) {
	row := models.SharedStatement{Date: in.Date, Name: in.Name, Number: in.Number, Category: in.Category}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create statement: %w", err)
	}
	return &row, nil
}

// List returns every row in id order.
func (s *Store) List(ctx context.Context) ([]models.SharedStatement, error) {
	var rows []models.SharedStatement
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	return rows, nil
}

func (s *Store) Get(ctx context.Context, id uint) (*models.SharedStatement, error) {
	var row models.SharedStatement
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get statement %d: %w", id, err)
	}
	return &row, nil
}

// Delete removes the row if present. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Delete(&models.SharedStatement{}, id).Error; err != nil {
		return fmt.Errorf("delete statement %d: %w", id, err)
	}
	return nil
}

// Update overwrites every mutable column of row id.
func (s *Store) Update(ctx context.Context, id uint, in form.SharedStatement) error {
	res := s.db.WithContext(ctx).Model(&models.SharedStatement{}).Where("id = ?", id).
		Select("date", "name", "number", "category").
		Updates(models.SharedStatement{Date: in.Date, Name: in.Name, Number: in.Number, Category: in.Category})
	if res.Error != nil {
		return fmt.Errorf("update statement %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
