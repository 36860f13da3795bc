package models

// SharedStatement is the single-tenant ledger row: no owner, free-text date and
// an integer amount.
type SharedStatement struct {
	ID       uint   `gorm:"primaryKey"`
	Date     string `gorm:"size:50;not null"`
	Name     string `gorm:"size:100;not null"`
	Number   int    `gorm:"not null"`
	Category string `gorm:"size:50;not null"`
}

// TableName keeps the single-tenant table named like the multi-tenant one;
// the two variants never share a database.
func (SharedStatement) TableName() string {
	return "statements"
}
