package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/transitlink/fleet-backend/internal/config"
	"github.com/transitlink/fleet-backend/internal/handlers"
	"github.com/transitlink/fleet-backend/internal/middleware"
	"github.com/transitlink/fleet-backend/internal/services"
	"github.com/transitlink/fleet-backend/internal/storage"
)

// Deps carries everything route registration needs
type Deps struct {
	Config     *config.Config
	Store      storage.Store
	Redis      *redis.Client
	OTP        *services.OTPService
	Bookings   *services.BookingService
	Vehicles   *services.VehicleService
	Auth       *services.AuthService
	Identities *services.IdentityResolver
	Version    string
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, deps Deps) {
	healthHandler := handlers.NewHealthHandler(deps.Store, deps.Version)
	otpHandler := handlers.NewOTPHandler(deps.OTP)
	bookingHandler := handlers.NewBookingHandler(deps.Bookings, deps.Store)
	driverHandler := handlers.NewDriverHandler(deps.Store, deps.Auth)
	conductorHandler := handlers.NewConductorHandler(deps.Store, deps.Auth)
	vehicleHandler := handlers.NewVehicleHandler(deps.Store, deps.Vehicles)
	routeHandler := handlers.NewRouteHandler(deps.Store)
	kycHandler := handlers.NewKYCHandler(deps.Store)

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to TransitLink Fleet Backend!",
			"version": deps.Version,
			"endpoints": fiber.Map{
				"health": "/health",
				"api":    "/api",
			},
		})
	})

	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")

	// OTP routes are rate limited per IP on top of the per-phone cooldown
	otp := api.Group("/otp", middleware.RateLimiter(deps.Redis, deps.Config.RateLimitRequests, deps.Config.RateLimitDuration))
	otp.Post("/send", otpHandler.SendOTP)
	otp.Post("/verify", otpHandler.VerifyOTP)

	drivers := api.Group("/drivers")
	drivers.Post("/signup", driverHandler.Signup)
	drivers.Post("/login", driverHandler.Login)
	drivers.Get("/", driverHandler.GetAllDrivers)
	drivers.Get("/:id", driverHandler.GetDriver)
	drivers.Put("/:id", driverHandler.UpdateDriver)
	drivers.Delete("/:id", driverHandler.DeleteDriver)

	conductors := api.Group("/conductors")
	conductors.Post("/signup", conductorHandler.Signup)
	conductors.Post("/login", conductorHandler.Login)
	conductors.Get("/", conductorHandler.GetAllConductors)
	conductors.Get("/:id", conductorHandler.GetConductor)
	conductors.Put("/:id", conductorHandler.UpdateConductor)
	conductors.Delete("/:id", conductorHandler.DeleteConductor)

	buses := api.Group("/buses")
	buses.Post("/", vehicleHandler.CreateBus)
	buses.Get("/", vehicleHandler.GetAllBuses)
	buses.Get("/driver/:driverID", vehicleHandler.GetBusesByDriver)
	buses.Get("/:id", vehicleHandler.GetBus)
	buses.Put("/:id", vehicleHandler.UpdateBus)
	buses.Delete("/:id", vehicleHandler.DeleteBus)

	cars := api.Group("/cars")
	cars.Post("/", vehicleHandler.CreateCar)
	cars.Get("/", vehicleHandler.GetAllCars)
	cars.Get("/driver/:driverID", vehicleHandler.GetCarsByDriver)
	cars.Get("/:id", vehicleHandler.GetCar)
	cars.Put("/:id", vehicleHandler.UpdateCar)
	cars.Delete("/:id", vehicleHandler.DeleteCar)

	bikes := api.Group("/bikes")
	bikes.Post("/", vehicleHandler.CreateBike)
	bikes.Get("/", vehicleHandler.GetAllBikes)
	bikes.Get("/driver/:driverID", vehicleHandler.GetBikesByDriver)
	bikes.Get("/:id", vehicleHandler.GetBike)
	bikes.Put("/:id", vehicleHandler.UpdateBike)
	bikes.Delete("/:id", vehicleHandler.DeleteBike)

	routeGroup := api.Group("/routes")
	routeGroup.Post("/", routeHandler.CreateRoute)
	routeGroup.Get("/", routeHandler.GetAllRoutes)
	routeGroup.Get("/:id", routeHandler.GetRoute)
	routeGroup.Put("/:id", routeHandler.UpdateRoute)
	routeGroup.Delete("/:id", routeHandler.DeleteRoute)

	checkpoints := api.Group("/checkpoints")
	checkpoints.Post("/", routeHandler.CreateCheckpoint)
	checkpoints.Get("/", routeHandler.GetAllCheckpoints)
	checkpoints.Get("/:id", routeHandler.GetCheckpoint)
	checkpoints.Put("/:id", routeHandler.UpdateCheckpoint)
	checkpoints.Delete("/:id", routeHandler.DeleteCheckpoint)

	bookings := api.Group("/bookings")
	bookings.Post("/", bookingHandler.CreateBooking)
	bookings.Get("/", bookingHandler.GetAllBookings)
	bookings.Get("/driver/:driverID", bookingHandler.GetBookingsByDriver)
	bookings.Get("/:id", bookingHandler.GetBooking)
	bookings.Post("/:id/decide", bookingHandler.DecideBooking)

	// KYC routes require a verified access token
	kyc := api.Group("/kyc", middleware.RequireAuth(deps.Config.JWTSecret, deps.Identities))
	kyc.Post("/personal-details", kycHandler.SavePersonalDetails)
	kyc.Get("/personal-details", kycHandler.GetPersonalDetails)
	kyc.Delete("/personal-details", kycHandler.DeletePersonalDetails)
	kyc.Post("/gst-details", kycHandler.SaveGSTDetails)
	kyc.Get("/gst-details", kycHandler.GetGSTDetails)
	kyc.Delete("/gst-details", kycHandler.DeleteGSTDetails)
	kyc.Post("/documents", kycHandler.SaveDocumentsUpload)
	kyc.Get("/documents", kycHandler.GetDocumentsUpload)
	kyc.Delete("/documents", kycHandler.DeleteDocumentsUpload)
	kyc.Post("/bank-details", kycHandler.SaveBankDetails)
	kyc.Get("/bank-details", kycHandler.GetBankDetails)
	kyc.Delete("/bank-details", kycHandler.DeleteBankDetails)
}
