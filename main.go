package main

import (
	"fmt"
	"os"

	"bizbooks-backend/config"
	"bizbooks-backend/models"
	"bizbooks-backend/routes"
	"bizbooks-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found")
	}
	config.InitLogger()
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Party{},
		&models.Item{},
		&models.Document{},
		&models.DocumentLine{},
		&models.PaymentHistoryEntry{},
		&models.Payment{},
		&models.PaymentAllocation{},
		&models.DocumentSequence{},
		&models.PaymentReminderLog{},
	)
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	services.NewReminderService(config.DB).StartScheduler()

	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
