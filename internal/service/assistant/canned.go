package assistant

import (
	"fmt"

	"github.com/labsense/backend/internal/model/chat"
)

// GenericReply answers any turn that did not carry an attachment.
const GenericReply = "I understand your question. While I can provide general information about lab values and health markers, please remember that I cannot replace professional medical advice. Would you like me to explain specific lab values or help you understand what certain results might mean?"

// CannedReply picks the reply for a user turn. It depends only on the
// attachment the turn carried.
func CannedReply(att *chat.Attachment) string {
	if att == nil {
		return GenericReply
	}
	return fmt.Sprintf("I've received your %s file \"%s\". Let me analyze this lab report for you. This appears to be a comprehensive panel - I can explain each marker in plain English and highlight any values that might need attention.", att.Kind(), att.Name)
}
