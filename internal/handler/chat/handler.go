package chat

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/labsense/backend/internal/export"
	"github.com/labsense/backend/internal/model/chat"
	chatService "github.com/labsense/backend/internal/service/chat"
	"github.com/labsense/backend/pkg/utils"
)

const defaultMaxUpload = 32 << 20

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc   *chatService.Service
	loc       *time.Location
	maxUpload int64
	logger    *zap.Logger
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, loc *time.Location, maxUpload int64, logger *zap.Logger) *Handler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		chatSvc:   chatSvc,
		loc:       loc,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Route("/sessions/{sessionID}", func(sr chi.Router) {
		sr.Get("/", h.handleGetSession)
		sr.Delete("/", h.handleCloseSession)
		sr.Get("/messages", h.handleListMessages)
		sr.Post("/messages", h.handleSendMessage)
		sr.Put("/attachment", h.handleSelectAttachment)
		sr.Delete("/attachment", h.handleClearAttachment)
		sr.Get("/transcript", h.handleExportTranscript)
	})
}

// handleCreateSession 创建会话
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	snapshot, err := h.chatSvc.Snapshot(r.Context(), session.ID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, h.snapshotView(snapshot))
}

type snapshotView struct {
	Session         chat.Session       `json:"session"`
	Messages        []chat.MessageView `json:"messages"`
	Pending         *chat.Attachment   `json:"pending,omitempty"`
	AwaitingReplies int                `json:"awaitingReplies"`
	Accept          string             `json:"accept"`
	Disclaimer      string             `json:"disclaimer"`
}

func (h *Handler) snapshotView(s chat.Snapshot) snapshotView {
	return snapshotView{
		Session:         s.Session,
		Messages:        chat.NewMessageViews(s.Messages, h.loc),
		Pending:         s.Pending,
		AwaitingReplies: s.AwaitingReplies,
		Accept:          chat.AcceptFilter,
		Disclaimer:      s.Disclaimer,
	}
}

// handleGetSession 获取会话快照
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.chatSvc.Snapshot(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.snapshotView(snapshot))
}

// handleCloseSession 关闭会话，尚未送达的回复将被丢弃
func (h *Handler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.CloseSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatSvc.LoadTranscript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, chat.NewMessageViews(messages, h.loc))
}

// handleSendMessage 发送消息。空消息且无附件时不做任何改变
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content string `json:"content"`
	}

	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sent, ok, err := h.chatSvc.Send(r.Context(), chi.URLParam(r, "sessionID"), payload.Content)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if !ok {
		utils.RespondJSON(w, http.StatusOK, map[string]any{"sent": false})
		return
	}

	view := chat.NewMessageView(sent, h.loc)
	utils.RespondJSON(w, http.StatusAccepted, map[string]any{
		"sent":         true,
		"message":      view,
		"replyAfterMs": h.chatSvc.ReplyDelay().Milliseconds(),
	})
}

// handleSelectAttachment 暂存附件。支持 multipart 上传（只记录文件名与类型）或 JSON 描述
func (h *Handler) handleSelectAttachment(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var (
		att *chat.Attachment
		err error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		att, err = h.attachmentFromUpload(w, r)
	} else {
		att, err = attachmentFromJSON(r)
	}
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.chatSvc.SelectAttachment(r.Context(), sessionID, att); err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"pending": att})
}

func (h *Handler) attachmentFromUpload(w http.ResponseWriter, r *http.Request) (*chat.Attachment, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("file field is required")
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = sniffMimeType(file, header.Filename)
	}

	return &chat.Attachment{Name: filepath.Base(header.Filename), MimeType: mimeType}, nil
}

// sniffMimeType falls back to the extension, then to content sniffing.
func sniffMimeType(file io.Reader, name string) string {
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		return byExt
	}
	head := make([]byte, 512)
	n, _ := io.ReadFull(file, head)
	return http.DetectContentType(head[:n])
}

func attachmentFromJSON(r *http.Request) (*chat.Attachment, error) {
	var payload chat.Attachment
	if err := utils.DecodeJSON(r, &payload); err != nil {
		return nil, errors.New("invalid request body")
	}
	if strings.TrimSpace(payload.Name) == "" {
		return nil, errors.New("name is required")
	}
	return &payload, nil
}

// handleClearAttachment 清除暂存附件
func (h *Handler) handleClearAttachment(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.ClearAttachment(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExportTranscript 导出会话记录
func (h *Handler) handleExportTranscript(w http.ResponseWriter, r *http.Request) {
	exporter, err := export.NewExporter(r.URL.Query().Get("format"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.chatSvc.Snapshot(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	fileName := fmt.Sprintf("labsense-%s.%s", snapshot.Session.ID, exporter.Extension())
	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)

	if err := exporter.Export(export.NewTranscript(snapshot, h.loc), w); err != nil {
		h.logger.Warn("transcript export failed", zap.String("session", snapshot.Session.ID), zap.Error(err))
	}
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chatService.ErrServiceClosed):
		utils.RespondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error("chat service error", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
