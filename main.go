package main

import (
	"context"
	"encoding/gob"
	"log"

	"github.com/proplayhub/backend/chat"
	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/controllers"
	"github.com/proplayhub/backend/queue"
	"github.com/proplayhub/backend/routes"
	"github.com/proplayhub/backend/utils"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Register types for session serialization
	gob.Register(controllers.RegistrationData{})

	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	// Initialize database
	config.InitDB()

	// Seed a staff account when configured
	controllers.CreateSampleStaff()

	// Initialize Google OAuth
	config.InitGoogleOAuth()

	// SMTP and push clients
	controllers.Mailer = utils.NewMailerFromEnv(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	pushClient := utils.NewPushClient(cfg.ExpoPushURL)

	// Redis-backed outbox. The API works without it; side effects are then
	// sent inline or skipped.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := config.InitRedis(); err != nil {
		utils.LogError("Redis unavailable, outbox disabled: %v", err)
	} else {
		queue.Tasks = queue.NewQueue(config.Redis)
		worker := queue.NewWorker(queue.Tasks, config.DB, controllers.Mailer, pushClient)
		go worker.Run(ctx)
	}

	// Support chat hub
	hub := chat.NewHub(config.DB)

	// Set up router
	router := routes.SetupRouter(hub)

	utils.LogInfo("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
