package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pedidoflow/restaurante-app/config"
	"github.com/pedidoflow/restaurante-app/controllers"
	"github.com/pedidoflow/restaurante-app/middlewares"
	"github.com/pedidoflow/restaurante-app/models"
	"github.com/pedidoflow/restaurante-app/services"
)

// SetupRouter wires every HTTP surface: the inbound webhook contract
// for the chat platform, the staff API, and the websocket streams.
func SetupRouter(db *gorm.DB, msgs *config.Messages, reminders *services.ReminderService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	userCtrl := controllers.NewUserController(db)
	menuCtrl := controllers.NewMenuController(db)
	orderCtrl := controllers.NewOrderController(db)
	notificationCtrl := controllers.NewNotificationController(db)
	webhookCtrl := controllers.NewWebhookController(db, msgs)
	reservationCtrl := controllers.NewReservationController(db, reminders)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// ----------------------------------------------------------------
	//              INBOUND WEBHOOK (chat-automation platform)
	// ----------------------------------------------------------------
	webhook := r.Group("/webhook")
	{
		webhook.POST("/orders", webhookCtrl.CreateOrder)
		webhook.POST("/orders/items", webhookCtrl.AddItems)
		webhook.POST("/orders/cancel", webhookCtrl.CancelOrder)
		webhook.POST("/orders/status", webhookCtrl.OrderStatus)
		webhook.POST("/tables/status", webhookCtrl.TableStatus)
		webhook.GET("/menu", webhookCtrl.GetMenu)
		webhook.GET("/menu/recommendations", webhookCtrl.GetRecommendations)
		webhook.POST("/waiter-call", webhookCtrl.CallWaiter)
		webhook.POST("/bill-request", webhookCtrl.RequestBill)
		webhook.POST("/questions", webhookCtrl.AskQuestion)
		webhook.POST("/complaints", webhookCtrl.FileComplaint)
		webhook.POST("/ratings", webhookCtrl.SubmitRating)
		webhook.POST("/suggestions", webhookCtrl.SubmitSuggestion)
	}

	// ----------------------------------------------------------------
	//                          PUBLIC
	// ----------------------------------------------------------------
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Customer order tracker: scoped to one order by its public id.
	r.GET("/ws/orders/:public_id", controllers.OrderTrackerHandler)

	// ----------------------------------------------------------------
	//                          STAFF
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.GET("/profile", userCtrl.GetProfile)
		auth.POST("/logout", userCtrl.Logout)

		// ORDERS
		auth.GET("/orders", orderCtrl.GetAllOrders)
		auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		auth.POST("/orders/:order_id/confirm",
			middlewares.RequireRole(models.RoleWaiter, models.RoleKitchen), orderCtrl.ConfirmOrder)
		auth.POST("/orders/:order_id/start-preparing",
			middlewares.RequireRole(models.RoleKitchen), orderCtrl.StartPreparing)
		auth.POST("/orders/:order_id/ready",
			middlewares.RequireRole(models.RoleKitchen), orderCtrl.MarkReady)
		auth.POST("/orders/:order_id/deliver",
			middlewares.RequireRole(models.RoleWaiter), orderCtrl.MarkDelivered)
		auth.POST("/orders/:order_id/reject",
			middlewares.RequireRole(models.RoleWaiter, models.RoleKitchen), orderCtrl.RejectOrder)

		// KITCHEN
		auth.POST("/order-items/:item_id/status",
			middlewares.RequireRole(models.RoleKitchen), orderCtrl.UpdateItemStatus)
		auth.GET("/kitchen/display", orderCtrl.GetKitchenDisplay)
		auth.GET("/kitchen/pending-items", orderCtrl.GetPendingItems)

		// MENUS
		auth.GET("/menus", menuCtrl.GetAllMenus)
		auth.POST("/menus", middlewares.RequireRole(), menuCtrl.CreateMenu)
		auth.PATCH("/menus/:menu_id", middlewares.RequireRole(), menuCtrl.UpdateMenu)
		auth.DELETE("/menus/:menu_id", middlewares.RequireRole(), menuCtrl.DeleteMenu)
		auth.GET("/categories", menuCtrl.GetAllCategories)
		auth.POST("/categories", middlewares.RequireRole(), menuCtrl.CreateCategory)

		// NOTIFICATIONS
		auth.GET("/notifications", notificationCtrl.GetAllNotifications)
		auth.GET("/notifications/:notif_id", notificationCtrl.GetNotificationByID)
		auth.PATCH("/notifications/:notif_id/read", notificationCtrl.MarkRead)

		// RESERVATIONS
		auth.GET("/reservations", reservationCtrl.GetAllReservations)
		auth.POST("/reservations", reservationCtrl.CreateReservation)
		auth.POST("/reminders/run", reservationCtrl.RunReminders)
	}

	// Staff websocket streams, authenticated by query token.
	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware())
	{
		ws.GET("/staff", controllers.StaffStreamHandler)
	}

	return r
}
