package routes

import (
	"cylinder-booking/controllers/analytics"
	"cylinder-booking/controllers/auth"
	"cylinder-booking/controllers/booking"
	"cylinder-booking/controllers/contact"
	"cylinder-booking/controllers/delivery"
	"cylinder-booking/controllers/inventory"
	"cylinder-booking/controllers/payment"
	"cylinder-booking/controllers/server"
	"cylinder-booking/controllers/user"
	"cylinder-booking/logger"
	"cylinder-booking/middleware"
	"cylinder-booking/services/mailer"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	asyncLogger := logger.NewAsyncLogger(db)
	smtpMailer := mailer.New()

	authController := auth.NewAuthController(db, asyncLogger, smtpMailer)
	userController := user.NewUserController(db)
	bookingController := booking.NewBookingController(db, asyncLogger, smtpMailer)
	paymentController := payment.NewPaymentController(db, asyncLogger, smtpMailer)
	deliveryController := delivery.NewDeliveryController(db, asyncLogger, smtpMailer)
	inventoryController := inventory.NewInventoryController(db, asyncLogger)
	contactController := contact.NewContactController(db, smtpMailer)
	analyticsController := analytics.NewAnalyticsController(db)
	serverController := server.NewServerController(db)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	api := app.Group("/api")

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api.Get("/health", serverController.Health)

	api.Post("/register", authController.Register)
	api.Post("/login", authController.Login)
	api.Post("/verify-email", authController.VerifyEmail)
	api.Post("/forgot-password", authController.ForgotPassword)
	api.Post("/reset-password", authController.ResetPassword)

	/*=============================================================================
	| Account Routes
	===============================================================================*/
	authGroup := api.Group("/auth").Use(middleware.RequireAuthentication())
	authGroup.Post("/logout", authController.LogOut)
	authGroup.Get("/profile", userController.GetProfile)
	authGroup.Post("/profile/update", userController.UpdateProfile)

	/*=============================================================================
	| Booking Routes (customer)
	===============================================================================*/
	bookingGroup := api.Group("/booking").Use(middleware.RequireAuthentication())
	bookingGroup.Post("/create", bookingController.Create)
	bookingGroup.Get("/list", bookingController.ListMine)
	bookingGroup.Post("/cancel", bookingController.Cancel)
	bookingGroup.Get("/:id", bookingController.GetOne)

	/*=============================================================================
	| Payment Routes (customer)
	===============================================================================*/
	paymentGroup := api.Group("/payment").Use(middleware.RequireAuthentication())
	paymentGroup.Get("/upi-link/:id", paymentController.GetLink)
	paymentGroup.Post("/submit-upi", paymentController.SubmitUPI)

	/*=============================================================================
	| Contact Routes (customer)
	===============================================================================*/
	contactGroup := api.Group("/contact").Use(middleware.RequireAuthentication())
	contactGroup.Post("/create", contactController.Create)
	contactGroup.Get("/list", contactController.ListMine)
	contactGroup.Get("/:id", contactController.GetOne)

	/*=============================================================================
	| Admin Routes
	===============================================================================*/
	admin := api.Group("/admin").Use(middleware.RequireAdmin())

	admin.Get("/user/list", userController.ListUsers)

	admin.Get("/booking/list", bookingController.ListAll)
	admin.Post("/booking/approve", bookingController.Approve)
	admin.Post("/booking/cancel", bookingController.AdminCancel)

	admin.Get("/payment/pending", paymentController.ListPendingReviews)
	admin.Post("/payment/review", paymentController.Review)

	admin.Post("/partner/create", deliveryController.CreatePartner)
	admin.Get("/partner/list", deliveryController.ListPartners)
	admin.Post("/partner/update", deliveryController.UpdatePartner)
	admin.Post("/delivery/assign", deliveryController.Assign)
	admin.Get("/delivery/list", deliveryController.ListAssignments)
	admin.Post("/delivery/status", deliveryController.UpdateStatus)

	admin.Get("/inventory/stock", inventoryController.GetStock)
	admin.Post("/inventory/batch", inventoryController.ReceiveBatch)
	admin.Get("/inventory/batch/list", inventoryController.ListBatches)
	admin.Post("/inventory/adjust", inventoryController.Adjust)
	admin.Get("/inventory/adjustments", inventoryController.ListAdjustments)

	admin.Get("/contact/list", contactController.ListAll)
	admin.Get("/contact/:id", contactController.GetOne)
	admin.Post("/contact/reply", contactController.Reply)
	admin.Post("/contact/status", contactController.UpdateStatus)

	admin.Get("/analytics/summary", analyticsController.Summary)
	admin.Get("/analytics/bookings.csv", analyticsController.ExportBookingsCSV)
	admin.Get("/analytics/deliveries.csv", analyticsController.ExportDeliveriesCSV)
	admin.Get("/analytics/payments.csv", analyticsController.ExportPaymentsCSV)
}
