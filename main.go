package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/pedidoflow/restaurante-app/config"
	"github.com/pedidoflow/restaurante-app/database"
	"github.com/pedidoflow/restaurante-app/router"
	"github.com/pedidoflow/restaurante-app/services"
	"github.com/pedidoflow/restaurante-app/utils"
)

func main() {
	utils.InitLogger()

	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	cfg := config.Load()
	msgs := config.LoadMessages(cfg.MessagesFile)

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate: %v", err)
	}

	relay := services.NewWebhookRelay(db, cfg, msgs)

	// The event monitor is the single happens-after-commit edge: it
	// drains the lifecycle events written by the mutating transactions
	// and fans them out to notifications, websockets and the relay.
	monitor := services.NewEventMonitor(db, relay)
	monitor.Start()
	defer monitor.Stop()

	reminders := services.NewReminderService(db, relay, cfg, msgs)
	reminders.Start()
	defer reminders.Stop()

	r := router.SetupRouter(db, msgs, reminders)

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}
