package assistant

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/labsense/backend/internal/model/chat"
)

const (
	systemPrompt = "You are LabSense, a health-literacy assistant. Explain lab results in plain English and never replace professional medical advice."
	historyLimit = 10
)

// Service produces assistant replies through an eino chain backed by the
// canned model. It performs no I/O, so Reply never blocks.
type Service struct {
	chain  compose.Runnable[map[string]any, *schema.Message]
	logger *zap.Logger
}

// NewService compiles the reply chain.
func NewService(ctx context.Context, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", false),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(&cannedModel{})

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile reply chain: %w", err)
	}

	return &Service{chain: runnable, logger: logger}, nil
}

// Reply generates the assistant answer to the last user turn of transcript.
func (s *Service) Reply(ctx context.Context, transcript []chat.Message) (string, error) {
	response, err := s.chain.Invoke(ctx, map[string]any{
		"system":  systemPrompt,
		"history": buildHistoryMessages(transcript),
	})
	if err != nil {
		return "", fmt.Errorf("failed to run reply chain: %w", err)
	}

	s.logger.Debug("generated reply", zap.Int("history", len(transcript)), zap.Int("length", len(response.Content)))
	return response.Content, nil
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Sender {
		case chat.SenderUser:
			user := schema.UserMessage(msg.Content)
			if msg.Attachment != nil {
				user.Extra = map[string]any{
					extraAttachmentName: msg.Attachment.Name,
					extraAttachmentType: msg.Attachment.MimeType,
				}
			}
			history = append(history, user)
		case chat.SenderAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}
