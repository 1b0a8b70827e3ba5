package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/transitlink/fleet-backend/database"
	"github.com/transitlink/fleet-backend/internal/config"
	"github.com/transitlink/fleet-backend/internal/events"
	"github.com/transitlink/fleet-backend/internal/models"
	"github.com/transitlink/fleet-backend/internal/routes"
	"github.com/transitlink/fleet-backend/internal/services"
	"github.com/transitlink/fleet-backend/internal/storage"
)

const version = "1.0.0"

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found - checking environment variables")
	}

	cfg := config.New()

	// Initialize storage
	var store storage.Store
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect(cfg)

		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.PhoneOTP{},
			&models.Driver{},
			&models.Conductor{},
			&models.AppUser{},
			&models.Bus{},
			&models.Car{},
			&models.Bike{},
			&models.Route{},
			&models.Checkpoint{},
			&models.Booking{},
			&models.PersonalDetails{},
			&models.GSTDetails{},
			&models.DocumentsUpload{},
			&models.BankDetails{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}

	// SMS sender; missing Twilio credentials are fatal when SMS is enabled
	sms, err := services.NewTwilioSMS(cfg)
	if err != nil {
		log.Fatal("Failed to initialize SMS sender:", err)
	}
	if sms.Simulated() {
		log.Println("⚠️  SMS delivery disabled - OTP sends are simulated")
	} else {
		log.Println("✅ Twilio SMS sender initialized")
	}

	// Redis is optional; without it the OTP endpoints skip IP rate limiting
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		log.Println("✅ Redis rate limiter configured")
	} else {
		log.Println("⚠️  REDIS_ADDR not set - OTP IP rate limiting disabled")
	}

	// RabbitMQ is optional; without it booking decisions are not published
	var publisher events.Publisher
	if cfg.RabbitURL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ:", err)
		}
		defer rabbit.Close()
		publisher = rabbit
		log.Println("✅ RabbitMQ booking event publisher initialized")
	} else {
		log.Println("⚠️  RABBIT_URL not set - booking events disabled")
	}

	// Initialize all services
	tokens := services.NewJWTIssuer(cfg)
	identities := services.NewIdentityResolver(store)
	otpService := services.NewOTPService(store, sms, tokens, identities, cfg.IsDevelopment())
	bookingService := services.NewBookingService(store, publisher)
	vehicleService := services.NewVehicleService(store)
	authService := services.NewAuthService(store, tokens)
	log.Println("✅ All services initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "TransitLink Fleet Backend v" + version,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	routes.SetupRoutes(app, routes.Deps{
		Config:     cfg,
		Store:      store,
		Redis:      redisClient,
		OTP:        otpService,
		Bookings:   bookingService,
		Vehicles:   vehicleService,
		Auth:       authService,
		Identities: identities,
		Version:    version,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server shutdown error: %v", err)
		}
	}()

	log.Printf("🚀 Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
