package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/labsense/backend/internal/model/chat"
	chatservice "github.com/labsense/backend/internal/service/chat"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// SessionService is the part of the chat service a socket drives.
type SessionService interface {
	Snapshot(ctx context.Context, sessionID string) (chat.Snapshot, error)
	Subscribe(ctx context.Context, sessionID string) (<-chan chatservice.Event, func(), error)
	Send(ctx context.Context, sessionID, text string) (chat.Message, bool, error)
	SelectAttachment(ctx context.Context, sessionID string, att *chat.Attachment) error
	ClearAttachment(ctx context.Context, sessionID string) error
}

// Handler WebSocket聊天处理器
type Handler struct {
	chatSvc  SessionService
	loc      *time.Location
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// New 创建WebSocket处理器
func New(chatSvc SessionService, loc *time.Location, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		chatSvc: chatSvc,
		loc:     loc,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// SendMessage 发送文本消息
type SendMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// conn serialises writes; gorilla connections allow one concurrent writer.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(v)
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// handleWebSocket 处理WebSocket连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Subscribe before the snapshot so nothing appended in between is lost.
	// Clients dedupe the overlap by message id.
	events, unsubscribe, err := h.chatSvc.Subscribe(ctx, sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	defer unsubscribe()

	snapshot, err := h.chatSvc.Snapshot(ctx, sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer wsConn.Close()
	c := &conn{ws: wsConn}

	h.logger.Info("websocket connected", zap.String("session", sessionID))

	_ = wsConn.SetReadDeadline(time.Now().Add(readTimeout))
	wsConn.SetPongHandler(func(string) error {
		return wsConn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	h.send(c, sessionID, "connected", map[string]any{
		"messages":   chat.NewMessageViews(snapshot.Messages, h.loc),
		"pending":    snapshot.Pending,
		"accept":     chat.AcceptFilter,
		"disclaimer": snapshot.Disclaimer,
	})

	go h.forwardEvents(ctx, c, events)
	go h.pingLoop(ctx, c)

	for {
		var msg inboundMessage
		if err := wsConn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", zap.String("session", sessionID), zap.Error(err))
			}
			return
		}
		_ = wsConn.SetReadDeadline(time.Now().Add(readTimeout))

		if msg.SessionID != "" && msg.SessionID != sessionID {
			h.sendError(c, "session mismatch")
			continue
		}

		if err := h.handleMessage(ctx, sessionID, &msg); err != nil {
			h.sendError(c, err.Error())
			if errors.Is(err, chatservice.ErrSessionNotFound) {
				return
			}
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, sessionID string, msg *inboundMessage) error {
	switch msg.Type {
	case "send":
		var payload SendMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return errors.New("invalid send payload")
		}
		_, _, err := h.chatSvc.Send(ctx, sessionID, payload.Text)
		return err
	case "attach":
		var att chat.Attachment
		if err := json.Unmarshal(msg.Data, &att); err != nil || att.Name == "" {
			return errors.New("invalid attach payload")
		}
		return h.chatSvc.SelectAttachment(ctx, sessionID, &att)
	case "clear":
		return h.chatSvc.ClearAttachment(ctx, sessionID)
	default:
		return errors.New("unsupported message type: " + msg.Type)
	}
}

// forwardEvents relays session events until the subscription or ctx ends.
func (h *Handler) forwardEvents(ctx context.Context, c *conn, events <-chan chatservice.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-events:
			if !open {
				h.send(c, "", "closed", nil)
				_ = c.ws.Close()
				return
			}
			data := map[string]any{}
			if event.Message != nil {
				data["message"] = chat.NewMessageView(*event.Message, h.loc)
			}
			if event.Type == chatservice.EventAttachment {
				data["pending"] = event.Pending
			}
			h.send(c, event.SessionID, string(event.Type), data)
		}
	}
}

func (h *Handler) send(c *conn, sessionID, kind string, data interface{}) {
	msg := outgoingMessage{
		Type:      kind,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := c.writeJSON(msg); err != nil {
		h.logger.Debug("websocket write failed", zap.String("type", kind), zap.Error(err))
	}
}

func (h *Handler) sendError(c *conn, message string) {
	h.send(c, "", "error", map[string]string{"message": message})
}

// pingLoop 定期发送ping消息
func (h *Handler) pingLoop(ctx context.Context, c *conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}
