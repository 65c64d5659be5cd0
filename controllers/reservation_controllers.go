package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pedidoflow/restaurante-app/models"
	"github.com/pedidoflow/restaurante-app/services"
	"github.com/pedidoflow/restaurante-app/utils"
)

type ReservationController struct {
	DB        *gorm.DB
	Reminders *services.ReminderService
}

func NewReservationController(db *gorm.DB, reminders *services.ReminderService) *ReservationController {
	return &ReservationController{DB: db, Reminders: reminders}
}

// GetAllReservations
func (rc *ReservationController) GetAllReservations(c *gin.Context) {
	var reservations []models.Reservation
	if err := rc.DB.Order("reserved_for asc").Find(&reservations).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

// CreateReservation
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var body struct {
		CustomerName  string    `json:"customer_name" binding:"required"`
		CustomerPhone string    `json:"customer_phone" binding:"required"`
		PartySize     int       `json:"party_size"`
		ReservedFor   time.Time `json:"reserved_for" binding:"required"`
		Notes         string    `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.PartySize <= 0 {
		body.PartySize = 1
	}

	reservation := models.Reservation{
		CustomerName:  body.CustomerName,
		CustomerPhone: body.CustomerPhone,
		PartySize:     body.PartySize,
		ReservedFor:   body.ReservedFor,
		Notes:         body.Notes,
	}
	if err := rc.DB.Create(&reservation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Reservation created", reservation)
}

// RunReminders triggers the reminder job outside its scheduled hour.
// Exists for testing and manual replays; admin only.
func (rc *ReservationController) RunReminders(c *gin.Context) {
	role, _ := c.Get("role")
	if role != models.RoleAdmin {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	sent := rc.Reminders.Run(true)
	utils.RespondJSON(c, http.StatusOK, "Reminders sent", gin.H{"sent": sent})
}
