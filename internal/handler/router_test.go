package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labsense/backend/internal/config"
	historyModel "github.com/labsense/backend/internal/model/history"
	chatService "github.com/labsense/backend/internal/service/chat"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Addr: ":0", AllowedOrigins: []string{"*"}, MaxUploadBytes: 1 << 20},
		Chat:   config.ChatConfig{ReplyDelay: time.Hour, Location: time.UTC},
	}
	chatSvc := chatService.NewService(chatService.WithReplyDelay(cfg.Chat.ReplyDelay))
	t.Cleanup(func() { _ = chatSvc.Close() })

	return NewRouter(cfg, historyModel.NewMemoryStore(historyModel.Seed()), chatSvc, nil)
}

func TestRouterMountsAPI(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/api/history", http.StatusOK},
		{http.MethodGet, "/api/dashboard", http.StatusOK},
		{http.MethodPost, "/api/sessions", http.StatusCreated},
		{http.MethodGet, "/api/sessions/missing", http.StatusNotFound},
		{http.MethodGet, "/health", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.want, resp.Code)
		})
	}
}

func TestRouterAppliesCORS(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("Access-Control-Allow-Origin"))
}
