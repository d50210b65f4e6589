package adaptor

import (
	"net/http"

	"store-rating/internal/dto/request"
	"store-rating/internal/usecase"
	"store-rating/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type RatingHandler struct {
	service usecase.RatingService
	log     *zap.Logger
}

func NewRatingHandler(service usecase.RatingService, log *zap.Logger) *RatingHandler {
	return &RatingHandler{
		service: service,
		log:     log.With(zap.String("handler", "rating")),
	}
}

// SubmitRating handles POST /api/user/ratings
func (h *RatingHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipalFromContext(r.Context())

	var req request.SubmitRatingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rating, err := h.service.SubmitRating(r.Context(), principal, &req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "submit rating")
		return
	}

	utils.ResponseCreated(w, "Rating submitted successfully", rating)
}

// UpdateRating handles PUT /api/user/ratings/{id}
func (h *RatingHandler) UpdateRating(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipalFromContext(r.Context())

	var req request.UpdateRatingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rating, err := h.service.UpdateRating(r.Context(), principal, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "update rating")
		return
	}

	utils.ResponseSuccess(w, "Rating updated successfully", rating)
}

// ListMyRatings handles GET /api/user/my-ratings
func (h *RatingHandler) ListMyRatings(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipalFromContext(r.Context())

	page := pageFromQuery(r)
	ratings, err := h.service.ListMyRatings(r.Context(), principal, &page)
	if err != nil {
		handleServiceError(w, r, h.log, err, "list own ratings")
		return
	}

	utils.ResponseSuccess(w, "Ratings retrieved successfully", ratings)
}
