package adaptor

import (
	"net/http"

	"store-rating/internal/usecase"
	"store-rating/pkg/utils"

	"go.uber.org/zap"
)

type DashboardHandler struct {
	service usecase.DashboardService
	log     *zap.Logger
}

func NewDashboardHandler(service usecase.DashboardService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		log:     log.With(zap.String("handler", "dashboard")),
	}
}

// Admin handles GET /api/admin/dashboard
func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipalFromContext(r.Context())

	dash, err := h.service.Admin(r.Context(), principal)
	if err != nil {
		handleServiceError(w, r, h.log, err, "load admin dashboard")
		return
	}

	utils.ResponseSuccess(w, "Dashboard retrieved successfully", dash)
}

// Owner handles GET /api/owner/dashboard
func (h *DashboardHandler) Owner(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipalFromContext(r.Context())

	dash, err := h.service.Owner(r.Context(), principal)
	if err != nil {
		handleServiceError(w, r, h.log, err, "load owner dashboard")
		return
	}

	utils.ResponseSuccess(w, "Dashboard retrieved successfully", dash)
}
