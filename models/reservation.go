package models

import "time"

type Reservation struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CustomerName  string    `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone string    `gorm:"type:varchar(32);not null" json:"customer_phone"`
	PartySize     int       `gorm:"not null;default:1" json:"party_size"`
	ReservedFor   time.Time `gorm:"not null;index" json:"reserved_for"`
	Notes         string    `gorm:"type:text" json:"notes"`
	ReminderSent  bool      `gorm:"not null;default:false" json:"reminder_sent"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}
