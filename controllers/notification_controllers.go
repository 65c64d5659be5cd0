package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pedidoflow/restaurante-app/models"
	"github.com/pedidoflow/restaurante-app/utils"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetAllNotifications -> notifications for the caller's role, newest
// first. ?unread=true narrows to unread ones.
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	role, _ := c.Get("role")

	q := nc.DB.Order("created_at desc").Limit(200)
	if c.Query("unread") == "true" {
		q = q.Where("is_read = ?", false)
	}

	var notifs []models.Notification
	if err := q.Find(&notifs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Target roles live in a JSON column; filtering here keeps the
	// query portable between MySQL and the sqlite test database.
	roleStr, _ := role.(string)
	filtered := make([]models.Notification, 0, len(notifs))
	for _, n := range notifs {
		if roleStr == "" || n.HasRole(roleStr) {
			filtered = append(filtered, n)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Notifications", filtered)
}

// GetNotificationByID
func (nc *NotificationController) GetNotificationByID(c *gin.Context) {
	idStr := c.Param("notif_id")
	id, _ := strconv.Atoi(idStr)

	var notif models.Notification
	if err := nc.DB.First(&notif, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Notification detail", notif)
}

// MarkRead flips is_read; the only mutation a notification allows.
func (nc *NotificationController) MarkRead(c *gin.Context) {
	idStr := c.Param("notif_id")
	id, _ := strconv.Atoi(idStr)

	res := nc.DB.Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, gorm.ErrRecordNotFound)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", gin.H{"notif_id": id})
}
