package wire

import (
	"net/http"

	"store-rating/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireUser configures the routes of normal users: browsing and rating
func wireUser(r chi.Router, handler *adaptor.Handler, authenticate func(http.Handler) http.Handler) {
	r.Route("/api/user", func(r chi.Router) {
		r.Use(authenticate)

		// GET /api/user/stores?search=&page=1&per_page=10
		r.Get("/stores", handler.Store.ListStores)
		r.Get("/stores/{id}", handler.Store.GetStore)
		r.Post("/ratings", handler.Rating.SubmitRating)
		r.Put("/ratings/{id}", handler.Rating.UpdateRating)
		r.Get("/my-ratings", handler.Rating.ListMyRatings)
	})
}
