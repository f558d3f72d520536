package assistant

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/labsense/backend/internal/model/chat"
)

const (
	extraAttachmentName = "attachmentName"
	extraAttachmentType = "attachmentType"
)

// cannedModel is a model.ChatModel that never calls out. It answers the last
// user message with CannedReply.
type cannedModel struct{}

var _ model.ChatModel = (*cannedModel)(nil)

func (m *cannedModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	return schema.AssistantMessage(CannedReply(lastAttachment(input)), nil), nil
}

// Stream yields the reply word by word.
func (m *cannedModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	words := strings.SplitAfter(CannedReply(lastAttachment(input)), " ")
	chunks := make([]*schema.Message, 0, len(words))
	for _, word := range words {
		chunks = append(chunks, schema.AssistantMessage(word, nil))
	}
	return schema.StreamReaderFromArray(chunks), nil
}

func (m *cannedModel) BindTools(_ []*schema.ToolInfo) error {
	return nil
}

func lastAttachment(input []*schema.Message) *chat.Attachment {
	for i := len(input) - 1; i >= 0; i-- {
		msg := input[i]
		if msg == nil || msg.Role != schema.User {
			continue
		}
		// The last user turn decides; an attachment may carry an empty name.
		if _, ok := msg.Extra[extraAttachmentName]; !ok {
			return nil
		}
		name, _ := msg.Extra[extraAttachmentName].(string)
		mimeType, _ := msg.Extra[extraAttachmentType].(string)
		return &chat.Attachment{Name: name, MimeType: mimeType}
	}
	return nil
}
