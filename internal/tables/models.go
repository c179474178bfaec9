package tables

import (
	"time"
)

// Table represents a physical table in the dining room. A table is either
// standalone or merged into exactly one target table at any instant; merged
// tables contribute their capacity to the target and stop accepting bookings
// of their own.
type Table struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	VenueID    string    `gorm:"type:varchar(64);index;not null" json:"venue_id"`
	Number     string    `gorm:"type:varchar(50);not null" json:"number"`
	Capacity   int       `gorm:"not null;check:capacity >= 1" json:"capacity"`
	MergedInto *uint     `gorm:"index" json:"merged_into,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName sets the table name for Table
func (Table) TableName() string {
	return "restaurant_tables"
}

// IsMerged reports whether this table is absorbed into another table.
func (t *Table) IsMerged() bool {
	return t.MergedInto != nil
}
