package assistant

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labsense/backend/internal/model/chat"
)

func TestCannedReplyClassifiesAttachment(t *testing.T) {
	pdf := CannedReply(&chat.Attachment{Name: "panel.pdf", MimeType: "application/pdf"})
	assert.Contains(t, pdf, "PDF")
	assert.Contains(t, pdf, `"panel.pdf"`)

	img := CannedReply(&chat.Attachment{Name: "scan.jpg", MimeType: "image/jpeg"})
	assert.Contains(t, img, "image")
	assert.NotContains(t, img, "PDF")

	assert.Equal(t, GenericReply, CannedReply(nil))
}

func TestServiceReplyUsesLastUserTurn(t *testing.T) {
	ctx := context.Background()
	svc, err := NewService(ctx, nil)
	require.NoError(t, err)

	transcript := []chat.Message{
		chat.Greeting("s1", time.Now()),
		{Sender: chat.SenderUser, Content: "", Attachment: &chat.Attachment{Name: "lipids.pdf", MimeType: "application/pdf"}},
	}

	reply, err := svc.Reply(ctx, transcript)
	require.NoError(t, err)
	assert.Equal(t, CannedReply(transcript[1].Attachment), reply)

	transcript = append(transcript,
		chat.Message{Sender: chat.SenderAssistant, Content: reply},
		chat.Message{Sender: chat.SenderUser, Content: "What does high cholesterol mean?"},
	)
	reply, err = svc.Reply(ctx, transcript)
	require.NoError(t, err)
	assert.Equal(t, GenericReply, reply)
}

func TestBuildHistoryMessagesTrimsToLimit(t *testing.T) {
	messages := make([]chat.Message, 0, 15)
	for i := 0; i < 15; i++ {
		messages = append(messages, chat.Message{Sender: chat.SenderUser, Content: "q"})
	}

	history := buildHistoryMessages(messages)
	assert.Len(t, history, historyLimit)
	assert.Nil(t, buildHistoryMessages(nil))
}

func TestCannedModelStreamConcatsToReply(t *testing.T) {
	m := &cannedModel{}
	input := []*schema.Message{schema.UserMessage("hi")}

	stream, err := m.Stream(context.Background(), input)
	require.NoError(t, err)
	defer stream.Close()

	var sb strings.Builder
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		require.NoError(t, recvErr)
		sb.WriteString(chunk.Content)
	}

	assert.Equal(t, GenericReply, sb.String())
}

func TestServiceReplyAttachmentWithoutName(t *testing.T) {
	ctx := context.Background()
	svc, err := NewService(ctx, nil)
	require.NoError(t, err)

	transcript := []chat.Message{
		chat.Greeting("s1", time.Now()),
		{Sender: chat.SenderUser, Attachment: &chat.Attachment{MimeType: "application/pdf"}},
	}

	reply, err := svc.Reply(ctx, transcript)
	require.NoError(t, err)
	assert.NotEqual(t, GenericReply, reply)
	assert.Contains(t, reply, "PDF")
}
