package wire

import (
	"net/http"

	"store-rating/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireOwner(r chi.Router, handler *adaptor.Handler, authenticate func(http.Handler) http.Handler) {
	r.Route("/api/owner", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/dashboard", handler.Dashboard.Owner)
		r.Get("/my-stores", handler.Store.MyStores)
		r.Post("/stores", handler.Store.CreateStore)
		r.Get("/stores/{id}/ratings", handler.Store.ListStoreRatings)
		r.Put("/stores/{id}", handler.Store.UpdateStore)
		r.Delete("/stores/{id}", handler.Store.DeleteStore)
	})
}
