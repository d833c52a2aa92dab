package routes

import (
	"github.com/abelgirma/gojo-travel/handlers"
	"github.com/abelgirma/gojo-travel/middleware"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Chapa invokes the callback out-of-band and redirects the payer to the
	// success page after checkout; neither can carry our JWTs.
	api.Post("/payments/callback", handlers.HandlePaymentCallback)
	api.Get("/payments/success", handlers.PaymentSuccess)

	api.Post("/payments/initiate", handlers.InitiatePayment)
	api.Post("/payments/verify", handlers.VerifyPayment)

	api.Get("/payments/:paymentId", middleware.Protected(), handlers.GetPayment)
	api.Get("/bookings/:bookingId/payments", middleware.Protected(), handlers.GetBookingPayments)
}
