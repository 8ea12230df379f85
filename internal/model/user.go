package model

import "time"

// User is the owner of tasks and the recipient of notifications.
type User struct {
	ID         uint `gorm:"primaryKey"`
	Name       string
	Email      string `gorm:"index"`
	TelegramID int64  `gorm:"index"`

	// WeeklyDigest opts the user into the Monday summary.
	WeeklyDigest bool `gorm:"default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasContact reports whether the user can be reached out of band.
func (u User) HasContact() bool {
	return u.Email != "" || u.TelegramID != 0
}

// DisplayName falls back to a neutral greeting when no name is stored.
func (u User) DisplayName() string {
	if u.Name == "" {
		return "there"
	}
	return u.Name
}
