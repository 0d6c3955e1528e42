package httpapi

import (
	"net/http"

	"github.com/thiagovferrari/crm2026/internal/service"

	"go.uber.org/zap"
)

// DashboardHandler 仪表盘接口处理器
type DashboardHandler struct {
	dashboard *service.DashboardService
	auth      service.AuthService
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard *service.DashboardService, auth service.AuthService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, auth: auth, logger: logger}
}

// GET /crm/api/v1/dashboard
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r, h.auth)
	if session == nil {
		return
	}

	summary, err := h.dashboard.Summary(r.Context(), session.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(summary))
}
