package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"store-rating/internal/dto/request"
	"store-rating/internal/usecase"
	"store-rating/pkg/apperr"
	"store-rating/pkg/middleware"
	"store-rating/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth      *AuthHandler
	User      *UserHandler
	Store     *StoreHandler
	Rating    *RatingHandler
	Dashboard *DashboardHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(service.Auth, log),
		User:      NewUserHandler(service.User, log),
		Store:     NewStoreHandler(service.Store, log),
		Rating:    NewRatingHandler(service.Rating, log),
		Dashboard: NewDashboardHandler(service.Dashboard, log),
	}
}

// decodeJSON decodes the request body into dst. It writes the 400 itself
// and reports false when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			utils.ResponseBadRequest(w, "Request body is required", nil)
			return false
		}
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// pageFromQuery reads page and per_page; bad values fall back to defaults.
func pageFromQuery(r *http.Request) request.PaginatedRequest {
	query := r.URL.Query()
	return request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), utils.DefaultPage),
		PerPage: utils.ParseInt(query.Get("per_page"), utils.DefaultPerPage),
	}
}

func searchFromQuery(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("search"))
}

// handleServiceError logs according to the error kind and writes the
// matching response.
func handleServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, operation string) {
	reqLog := middleware.RequestLogger(log, r)

	switch kind := apperr.KindOf(err); kind {
	case apperr.KindInternal:
		reqLog.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
	case apperr.KindForbidden, apperr.KindUnauthenticated:
		reqLog.Warn(operation+" denied", zap.String("kind", string(kind)), zap.String("path", r.URL.Path))
	default:
		reqLog.Debug(operation+" rejected", zap.Error(err))
	}

	utils.ResponseError(w, err)
}
