package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/thiagovferrari/crm2026/internal/service"

	"go.uber.org/zap"
)

// ExportHandler 导出接口处理器
type ExportHandler struct {
	export *service.ExportService
	auth   service.AuthService
	logger *zap.Logger
}

func NewExportHandler(export *service.ExportService, auth service.AuthService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{export: export, auth: auth, logger: logger}
}

// GET /crm/api/v1/export
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	session := requireSession(w, r, h.auth)
	if session == nil {
		return
	}

	payload, err := h.export.Export(r.Context(), session.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	filename := fmt.Sprintf("crm-export-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(payload)
}
