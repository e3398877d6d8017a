package main

import (
	"log"
	"os"
	"runtime"

	"backend-delivery/internal/config"
	"backend-delivery/internal/http/handler"
	"backend-delivery/internal/http/middleware"
	"backend-delivery/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	app := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
	})

	config.LoadEnv()
	logger.Init()
	config.InitRedis()
	config.InitDB()
	defer config.CloseDB()

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Delivery API jalan",
		})
	})

	api := app.Group("/api/v1")

	// Account
	api.Post("/account/register", handler.Register)
	api.Post("/account/login", handler.Login)
	api.Get("/account/profile", middleware.JWTAuth(), handler.GetProfile)
	api.Put("/account/profile", middleware.JWTAuth(), handler.UpdateProfile)
	api.Post("/account/payment-methods", middleware.JWTAuth(), handler.AddPaymentMethod)
	api.Get("/account/payment-methods", middleware.JWTAuth(), handler.GetPaymentMethods)
	api.Delete("/account/payment-methods/:id", middleware.JWTAuth(), handler.DeletePaymentMethod)
	api.Put("/account/payment-methods/:id/default", middleware.JWTAuth(), handler.SetDefaultPaymentMethod)

	// Orders: route statis duluan biar tidak ketangkap /orders/:id
	api.Post("/orders", handler.CreateOrder)
	api.Post("/orders/publish", handler.PublishOrder)
	api.Get("/orders/stream", handler.StreamOrders)
	api.Get("/orders/health", handler.OrdersStreamHealth)
	api.Get("/orders/all", handler.GetAllOrders)
	api.Get("/orders/customer/:id", handler.GetCustomerOrders)
	api.Get("/orders/:id", handler.GetOrder)
	api.Get("/orders/:id/track", handler.TrackOrder)
	api.Put("/orders/:id/status", middleware.JWTAuth(), middleware.RoleAuth("employee", "admin"), handler.UpdateOrderStatus)

	// Driver & tracking lokasi
	api.Post("/drivers", handler.CreateDriver)
	api.Post("/drivers/:id/location", handler.UpdateDriverLocation)
	api.Post("/drivers/:id/online", handler.SetDriverOnline)
	api.Get("/tracking/order/:id/location", handler.GetDriverLocation)
	api.Get("/tracking/order/:id/stream", handler.StreamDriverLocation)

	// Announcements
	api.Post("/announcements", handler.CreateAnnouncement)
	api.Get("/announcements", handler.GetAnnouncements)
	api.Get("/announcements/stream", handler.StreamAnnouncements)

	// Support chat (websocket)
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(handler.ChatWebSocket))

	addr := os.Getenv("APP_HOST") + ":" + config.GetEnv("APP_PORT", "8080")
	log.Println("Server jalan di", addr)
	log.Fatal(app.Listen(addr))
}
