package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labsense/backend/internal/model/chat"
	"github.com/labsense/backend/internal/model/dashboard"
	chatService "github.com/labsense/backend/internal/service/chat"
)

func TestDashboardIncludesLiveCounters(t *testing.T) {
	chatSvc := chatService.NewService(chatService.WithReplyDelay(time.Hour))
	defer chatSvc.Close()

	ctx := context.Background()
	session, err := chatSvc.CreateSession(ctx)
	require.NoError(t, err)
	require.NoError(t, chatSvc.SelectAttachment(ctx, session.ID, &chat.Attachment{Name: "a.pdf", MimeType: "application/pdf"}))
	_, ok, err := chatSvc.Send(ctx, session.ID, "")
	require.NoError(t, err)
	require.True(t, ok)

	r := chi.NewRouter()
	New(chatSvc).RegisterRoutes(r)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var got dashboard.Dashboard
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Len(t, got.Activity, 7)
	assert.Len(t, got.Categories, 3)
	assert.Equal(t, 1, got.Live.ActiveSessions)
	assert.Equal(t, 1, got.Live.UserTurns)
	assert.Equal(t, 1, got.Live.PDFUploads)
	assert.Equal(t, 1, got.Live.AwaitingReplies)
	assert.Zero(t, got.Live.Replies)
}
