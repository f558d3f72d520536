package history

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/labsense/backend/internal/model/history"
	"github.com/labsense/backend/pkg/utils"
)

// Handler 历史报告的HTTP处理器
type Handler struct {
	reports history.Store
}

// New 创建历史报告处理器
func New(reports history.Store) *Handler {
	return &Handler{
		reports: reports,
	}
}

// RegisterRoutes 注册历史报告相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/history", h.handleListReports)
	r.Get("/history/{reportID}", h.handleGetReport)
}

// handleListReports 列出所有历史报告
func (h *Handler) handleListReports(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.reports.List())
}

func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.reports.FindByID(chi.URLParam(r, "reportID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "report not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, report)
}
