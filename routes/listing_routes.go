package routes

import (
	"github.com/abelgirma/gojo-travel/handlers"
	"github.com/abelgirma/gojo-travel/middleware"
	"github.com/gofiber/fiber/v2"
)

func ListingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/listings", handlers.GetListings)
	api.Get("/listings/:listingId", handlers.GetListing)
	api.Get("/listings/:listingId/reviews", handlers.GetListingReviews)
	api.Post("/listings/:listingId/reviews", middleware.Protected(), handlers.CreateReview)
}
