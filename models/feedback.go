package models

import "time"

// Question categories the chat bot sends. Unknown categories fall
// through to the waiter (see services.RouteQuestion).
const (
	QuestionCategoryMenu        = "menu"
	QuestionCategoryIngredients = "ingredients"
	QuestionCategoryPreparation = "preparation"
	QuestionCategoryGeneral     = "general"
)

// Complaint urgency. Anything that is not "high" routes like a normal
// complaint (see services.RouteComplaint's default arm).
const (
	UrgencyNormal = "normal"
	UrgencyHigh   = "high"
)

// ServiceCall records a customer calling a waiter to the table.
type ServiceCall struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TableNumber   string    `gorm:"type:varchar(20)" json:"table_number"`
	CustomerPhone string    `gorm:"type:varchar(32)" json:"customer_phone"`
	Reason        string    `gorm:"type:varchar(255)" json:"reason"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

// BillRequest records a customer asking for the bill. Repeated
// requests for the same order/table are harmless: each one only
// (re)raises a staff notification.
type BillRequest struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OrderID       *uint     `gorm:"index" json:"order_id,omitempty"`
	TableNumber   string    `gorm:"type:varchar(20)" json:"table_number"`
	CustomerPhone string    `gorm:"type:varchar(32)" json:"customer_phone"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

type Question struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TableNumber   string    `gorm:"type:varchar(20)" json:"table_number"`
	CustomerPhone string    `gorm:"type:varchar(32)" json:"customer_phone"`
	Category      string    `gorm:"type:varchar(30);not null;default:'general'" json:"category"`
	Text          string    `gorm:"type:text;not null" json:"text"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

type Complaint struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OrderID       *uint     `gorm:"index" json:"order_id,omitempty"`
	TableNumber   string    `gorm:"type:varchar(20)" json:"table_number"`
	CustomerPhone string    `gorm:"type:varchar(32)" json:"customer_phone"`
	Urgency       string    `gorm:"type:varchar(10);not null;default:'normal'" json:"urgency"`
	Text          string    `gorm:"type:text;not null" json:"text"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

type Rating struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OrderID       *uint     `gorm:"index" json:"order_id,omitempty"`
	CustomerPhone string    `gorm:"type:varchar(32)" json:"customer_phone"`
	OverallRating int       `gorm:"not null" json:"overall_rating"`
	FoodRating    *int      `json:"food_rating,omitempty"`
	ServiceRating *int      `json:"service_rating,omitempty"`
	Comment       string    `gorm:"type:text" json:"comment"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

type Suggestion struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CustomerPhone string    `gorm:"type:varchar(32)" json:"customer_phone"`
	Text          string    `gorm:"type:text;not null" json:"text"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}
