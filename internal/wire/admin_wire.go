package wire

import (
	"net/http"

	"store-rating/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireAdmin configures administrator routes. Role enforcement happens in
// the use cases; the group only requires a valid token.
func wireAdmin(r chi.Router, handler *adaptor.Handler, authenticate func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/dashboard", handler.Dashboard.Admin)

		// ==================== USERS ====================
		r.Route("/users", func(r chi.Router) {
			r.Get("/", handler.User.ListUsers) // GET /api/admin/users?search=&role=owner&page=1
			r.Post("/", handler.User.CreateUser)
			r.Get("/{id}", handler.User.GetUser)
			r.Put("/{id}", handler.User.UpdateUser)
			r.Delete("/{id}", handler.User.DeleteUser)
		})

		// ==================== STORES ====================
		r.Route("/stores", func(r chi.Router) {
			r.Get("/", handler.Store.ListStores)
			r.Post("/", handler.Store.CreateStore)
			r.Get("/{id}", handler.Store.GetStore)
			r.Get("/{id}/ratings", handler.Store.ListStoreRatings)
			r.Put("/{id}", handler.Store.UpdateStore)
			r.Delete("/{id}", handler.Store.DeleteStore)
		})
	})
}
