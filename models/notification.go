package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Staff roles a notification can be targeted at. The customer is not a
// role: customers are reached through the webhook relay only.
const (
	RoleAdmin   = "admin"
	RoleWaiter  = "waiter"
	RoleKitchen = "kitchen"
)

const (
	PriorityNormal = "normal"
	PriorityUrgent = "urgent"
)

// Notification is a durable, role-targeted record of a lifecycle or
// customer-initiated event. Immutable once created, except for IsRead.
type Notification struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Type        string         `gorm:"type:varchar(50);not null;index" json:"type"`
	Title       string         `gorm:"type:varchar(100);not null" json:"title"`
	Message     string         `gorm:"type:text;not null" json:"message"`
	Data        datatypes.JSON `json:"data"`
	TargetRoles datatypes.JSON `gorm:"not null" json:"target_roles"`
	IsRead      bool           `gorm:"not null;default:false" json:"is_read"`
	Priority    string         `gorm:"type:varchar(10);not null;default:'normal'" json:"priority"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
}

// Roles decodes the target role set.
func (n *Notification) Roles() []string {
	var roles []string
	if err := json.Unmarshal(n.TargetRoles, &roles); err != nil {
		return nil
	}
	return roles
}

// HasRole reports whether role is in the target set.
func (n *Notification) HasRole(role string) bool {
	for _, r := range n.Roles() {
		if r == role {
			return true
		}
	}
	return false
}
