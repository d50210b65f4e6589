package adaptor

import (
	"net/http"

	"store-rating/internal/dto/request"
	"store-rating/internal/usecase"
	"store-rating/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StoreHandler is shared by the admin, owner and user route groups. What a
// caller may do is decided by the store service, not by the route.
type StoreHandler struct {
	service usecase.StoreService
	log     *zap.Logger
}

func NewStoreHandler(service usecase.StoreService, log *zap.Logger) *StoreHandler {
	return &StoreHandler{
		service: service,
		log:     log.With(zap.String("handler", "store")),
	}
}

// ListStores handles GET /api/admin/stores and GET /api/user/stores
func (h *StoreHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipalFromContext(r.Context())

	req := &request.ListStoresRequest{
		PaginatedRequest: pageFromQuery(r),
		Search:           searchFromQuery(r),
	}

	stores, err := h.service.ListStores(r.Context(), principal, req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "list stores")
		return
	}

	utils.ResponseSuccess(w, "Stores retrieved successfully", stores)
}

// GetStore handles GET /api/{admin,user}/stores/{id}
func (h *StoreHandler) GetStore(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipalFromContext(r.Context())

	store, err := h.service.GetStore(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.log, err, "get store")
		return
	}

	utils.ResponseSuccess(w, "Store retrieved successfully", store)
}

// ListStoreRatings handles GET /api/{admin,owner}/stores/{id}/ratings
func (h *StoreHandler) ListStoreRatings(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipalFromContext(r.Context())

	page := pageFromQuery(r)
	ratings, err := h.service.ListStoreRatings(r.Context(), principal, chi.URLParam(r, "id"), &page)
	if err != nil {
		handleServiceError(w, r, h.log, err, "list store ratings")
		return
	}

	utils.ResponseSuccess(w, "Store ratings retrieved successfully", ratings)
}

// MyStores handles GET /api/owner/my-stores
func (h *StoreHandler) MyStores(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipalFromContext(r.Context())

	stores, err := h.service.MyStores(r.Context(), principal)
	if err != nil {
		handleServiceError(w, r, h.log, err, "list own stores")
		return
	}

	utils.ResponseSuccess(w, "Stores retrieved successfully", stores)
}

// CreateStore handles POST /api/admin/stores and POST /api/owner/stores
func (h *StoreHandler) CreateStore(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipalFromContext(r.Context())

	var req request.CreateStoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	store, err := h.service.CreateStore(r.Context(), principal, &req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "create store")
		return
	}

	utils.ResponseCreated(w, "Store created successfully", store)
}

// UpdateStore handles PUT /api/{admin,owner}/stores/{id}
func (h *StoreHandler) UpdateStore(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipalFromContext(r.Context())

	var req request.UpdateStoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	store, err := h.service.UpdateStore(r.Context(), principal, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "update store")
		return
	}

	utils.ResponseSuccess(w, "Store updated successfully", store)
}

// DeleteStore handles DELETE /api/{admin,owner}/stores/{id}
func (h *StoreHandler) DeleteStore(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipalFromContext(r.Context())

	if err := h.service.DeleteStore(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, h.log, err, "delete store")
		return
	}

	utils.ResponseSuccess(w, "Store deleted successfully", nil)
}
