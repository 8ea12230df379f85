package model

import "time"

// Label tags tasks (bug, frontend, chore, ...). Labels are per owner.
type Label struct {
	ID        uint   `gorm:"primaryKey"`
	OwnerID   uint   `gorm:"index:idx_owner_label_name,unique"`
	Name      string `gorm:"index:idx_owner_label_name,unique"`
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
