package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/labsense/backend/internal/config"
	"github.com/labsense/backend/internal/handler/chat"
	"github.com/labsense/backend/internal/handler/dashboard"
	"github.com/labsense/backend/internal/handler/history"
	"github.com/labsense/backend/internal/handler/stream"
	"github.com/labsense/backend/internal/handler/ws"
	middlewarePkg "github.com/labsense/backend/internal/middleware"
	historyModel "github.com/labsense/backend/internal/model/history"
	chatService "github.com/labsense/backend/internal/service/chat"
	"github.com/labsense/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(cfg *config.Config, reports historyModel.Store, chatSvc *chatService.Service, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(cfg.Server.AllowedOrigins))

	loc := cfg.Chat.Location

	// Create handlers
	chatHandler := chat.New(chatSvc, loc, cfg.Server.MaxUploadBytes, logger.Named("chat"))
	streamHandler := stream.New(chatSvc, loc, logger.Named("sse"))
	wsHandler := ws.New(chatSvc, loc, logger.Named("ws"))
	historyHandler := history.New(reports)
	dashboardHandler := dashboard.New(chatSvc)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		chatHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
		historyHandler.RegisterRoutes(api)
		dashboardHandler.RegisterRoutes(api)
	})

	return r
}
