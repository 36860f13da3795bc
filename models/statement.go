package models

import "time"

// DateLayout is the calendar format accepted for Statement.Date.
const DateLayout = "2006-01-02"

// Statement is a single ledger entry belonging to exactly one user.
type Statement struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Date      time.Time `gorm:"not null"`
	Name      string    `gorm:"size:100;not null"`
	Amount    float64   `gorm:"not null"`
	Category  string    `gorm:"size:50;not null"`
	UserID    uint      `gorm:"index;not null"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// DateString formats Date for form inputs and listings.
func (s Statement) DateString() string {
	if s.Date.IsZero() {
		return ""
	}
	return s.Date.Format(DateLayout)
}
