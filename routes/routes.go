package routes

import (
	"os"
	"strings"

	"bizbooks-backend/config"
	"bizbooks-backend/controllers"
	"bizbooks-backend/models"
	"bizbooks-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		allowedOrigins = strings.Split(env, ",")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.RequestLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Party routes
		parties := api.Group("/parties")
		{
			parties.POST("", controllers.CreateParty)
			parties.GET("", controllers.GetParties)
			parties.GET("/:id", controllers.GetParty)
			parties.PUT("/:id", controllers.UpdateParty)
			parties.DELETE("/:id", controllers.DeleteParty)
		}

		// Item routes
		items := api.Group("/items")
		{
			items.POST("", controllers.CreateItem)
			items.GET("", controllers.GetItems)
			items.GET("/:id", controllers.GetItem)
			items.PUT("/:id", controllers.UpdateItem)
			items.DELETE("/:id", controllers.DeleteItem)
		}

		// Sales order routes
		sales := api.Group("/sales-orders")
		{
			sales.POST("", controllers.CreateDocumentHandler(models.DocumentKindSalesOrder))
			sales.GET("", controllers.ListDocumentsHandler(models.DocumentKindSalesOrder))
			sales.GET("/:id", controllers.GetDocumentHandler(models.DocumentKindSalesOrder))
			sales.PATCH("/:id/status", controllers.UpdateDocumentStatusHandler(models.DocumentKindSalesOrder))
			sales.POST("/:id/payments", controllers.AddDocumentPaymentHandler(models.DocumentKindSalesOrder))
			sales.POST("/:id/convert-to-invoice", controllers.ConvertToInvoiceHandler(models.DocumentKindSalesOrder))
			sales.PATCH("/:id/cancel", controllers.CancelDocumentHandler(models.DocumentKindSalesOrder))
		}

		// Purchase order routes
		purchases := api.Group("/purchase-orders")
		{
			purchases.POST("", controllers.CreateDocumentHandler(models.DocumentKindPurchaseOrder))
			purchases.GET("", controllers.ListDocumentsHandler(models.DocumentKindPurchaseOrder))
			purchases.GET("/:id", controllers.GetDocumentHandler(models.DocumentKindPurchaseOrder))
			purchases.PATCH("/:id/status", controllers.UpdateDocumentStatusHandler(models.DocumentKindPurchaseOrder))
			purchases.POST("/:id/payments", controllers.AddDocumentPaymentHandler(models.DocumentKindPurchaseOrder))
			purchases.POST("/:id/convert-to-invoice", controllers.ConvertToInvoiceHandler(models.DocumentKindPurchaseOrder))
			purchases.PATCH("/:id/cancel", controllers.CancelDocumentHandler(models.DocumentKindPurchaseOrder))
		}

		// Payment routes
		payments := api.Group("/payments")
		{
			payments.POST("/pay-in", controllers.CreatePaymentIn)
			payments.POST("/pay-out", controllers.CreatePaymentOut)
			payments.GET("", controllers.GetPayments)
			payments.GET("/:id", controllers.GetPayment)
			payments.PATCH("/:id/cancel", controllers.CancelPayment)
		}

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)
	}

	return r
}
