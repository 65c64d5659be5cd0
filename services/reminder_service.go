package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pedidoflow/restaurante-app/config"
	"github.com/pedidoflow/restaurante-app/models"
	"github.com/pedidoflow/restaurante-app/utils"
)

// ReminderService relays one webhook call per next-day reservation,
// once a day at the configured hour. Each reservation is an
// independent outcome: one failed delivery never stops the rest.
type ReminderService struct {
	DB       *gorm.DB
	Relay    *WebhookRelay
	Hour     int
	Force    bool
	Messages *config.Messages
	StopChan chan struct{}
	Interval time.Duration
}

func NewReminderService(db *gorm.DB, relay *WebhookRelay, cfg *config.Config, msgs *config.Messages) *ReminderService {
	return &ReminderService{
		DB:       db,
		Relay:    relay,
		Hour:     cfg.ReminderHour,
		Force:    cfg.ReminderForce,
		Messages: msgs,
		StopChan: make(chan struct{}),
		Interval: 15 * time.Minute,
	}
}

func (rs *ReminderService) Start() {
	go func() {
		ticker := time.NewTicker(rs.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rs.Run(false)
			case <-rs.StopChan:
				return
			}
		}
	}()
}

func (rs *ReminderService) Stop() {
	close(rs.StopChan)
}

type reminderPayload struct {
	Event          string    `json:"event"`
	CustomerName   string    `json:"customer_name"`
	CustomerPhone  string    `json:"customer_phone"`
	ReservedFor    time.Time `json:"reserved_for"`
	PartySize      int       `json:"party_size"`
	Message        string    `json:"message"`
	RestaurantName string    `json:"restaurant_name"`
	Timestamp      time.Time `json:"timestamp"`
}

// Run sends the pending reminders and returns how many went out.
// Outside the configured hour it does nothing unless forced (the
// override exists for testing and manual replays).
func (rs *ReminderService) Run(force bool) int {
	now := time.Now()
	if !force && !rs.Force && now.Hour() != rs.Hour {
		return 0
	}

	// Reservations falling anywhere in tomorrow's calendar day.
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	end := start.AddDate(0, 0, 1)

	var reservations []models.Reservation
	if err := rs.DB.
		Where("reserved_for >= ? AND reserved_for < ? AND reminder_sent = ?", start, end, false).
		Find(&reservations).Error; err != nil {
		utils.ErrorLogger.Printf("reminder: fetching reservations: %v", err)
		return 0
	}

	sent := 0
	for _, r := range reservations {
		payload := reminderPayload{
			Event:         "reservation_reminder",
			CustomerName:  r.CustomerName,
			CustomerPhone: r.CustomerPhone,
			ReservedFor:   r.ReservedFor,
			PartySize:     r.PartySize,
			Message: fmt.Sprintf(rs.Messages.Reminder,
				r.CustomerName, r.ReservedFor.Format("15:04"), r.PartySize),
			RestaurantName: rs.Relay.RestaurantName,
			Timestamp:      time.Now(),
		}
		if err := rs.Relay.Send("reservation_reminder", payload, nil); err != nil {
			utils.ErrorLogger.Printf("reminder: reservation %d: %v", r.ID, err)
			continue
		}
		if err := rs.DB.Model(&models.Reservation{}).
			Where("id = ?", r.ID).
			Update("reminder_sent", true).Error; err != nil {
			utils.ErrorLogger.Printf("reminder: marking reservation %d: %v", r.ID, err)
		}
		sent++
	}

	if sent > 0 {
		utils.InfoLogger.Printf("reminder: %d reservation reminder(s) sent", sent)
	}
	return sent
}
