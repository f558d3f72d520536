package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/labsense/backend/internal/model/dashboard"
	chatService "github.com/labsense/backend/internal/service/chat"
	"github.com/labsense/backend/pkg/utils"
)

// Handler serves the admin dashboard.
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建仪表盘处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册仪表盘路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.handleDashboard)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats := h.chatSvc.Stats(r.Context())
	utils.RespondJSON(w, http.StatusOK, dashboard.Seed().WithLive(dashboard.Live{
		ActiveSessions:  stats.ActiveSessions,
		CreatedSessions: stats.CreatedSessions,
		UserTurns:       stats.UserTurns,
		Replies:         stats.Replies,
		PDFUploads:      stats.PDFUploads,
		ImageUploads:    stats.ImageUploads,
		AwaitingReplies: stats.AwaitingReplies,
	}))
}
