package stream

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/labsense/backend/internal/model/chat"
	chatService "github.com/labsense/backend/internal/service/chat"
	"github.com/labsense/backend/pkg/utils"
)

const defaultHeartbeat = 15 * time.Second

// Handler pushes session events to browsers via Server-Sent Events.
type Handler struct {
	chatSvc   *chatService.Service
	loc       *time.Location
	heartbeat time.Duration
	logger    *zap.Logger
}

// New creates a new stream handler
func New(chatSvc *chatService.Service, loc *time.Location, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{chatSvc: chatSvc, loc: loc, heartbeat: defaultHeartbeat, logger: logger}
}

// RegisterRoutes registers the event stream endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/events", h.handleEvents)
}

// EventPayload is the data of one SSE event.
type EventPayload struct {
	SessionID string           `json:"sessionId"`
	Message   *chat.Message    `json:"message,omitempty"`
	Time      string           `json:"time,omitempty"`
	Pending   *chat.Attachment `json:"pending,omitempty"`
}

func (h *Handler) payload(event chatService.Event) EventPayload {
	p := EventPayload{SessionID: event.SessionID, Message: event.Message, Pending: event.Pending}
	if event.Message != nil {
		p.Time = chat.FormatTimestamp(*event.Message, h.loc)
	}
	return p
}

// handleEvents replays the current transcript, then streams every change
// until the client goes away or the session closes.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	events, cancel, err := h.chatSvc.Subscribe(ctx, sessionID)
	if err != nil {
		if errors.Is(err, chatService.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "subscribe failed")
		return
	}
	defer cancel()

	snapshot, err := h.chatSvc.Snapshot(ctx, sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	for i := range snapshot.Messages {
		msg := snapshot.Messages[i]
		if err := utils.SendSSEEvent(w, flusher, string(chatService.EventMessage), h.payload(chatService.Event{
			Type: chatService.EventMessage, SessionID: sessionID, Message: &msg,
		})); err != nil {
			return
		}
	}
	if snapshot.Pending != nil {
		_ = utils.SendSSEEvent(w, flusher, string(chatService.EventAttachment), EventPayload{SessionID: sessionID, Pending: snapshot.Pending})
	}

	h.logger.Debug("sse stream opened", zap.String("session", sessionID))

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("sse stream closed by client", zap.String("session", sessionID))
			return
		case event, open := <-events:
			if !open {
				_ = utils.SendSSEEvent(w, flusher, "closed", EventPayload{SessionID: sessionID})
				return
			}
			if err := utils.SendSSEEvent(w, flusher, string(event.Type), h.payload(event)); err != nil {
				h.logger.Warn("sse write failed", zap.String("session", sessionID), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "heartbeat"); err != nil {
				return
			}
		}
	}
}
