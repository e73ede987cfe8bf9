package chat

import (
	"context"

	"github.com/mustafizur/chat/backend/internal/model/chat"
	"github.com/mustafizur/chat/backend/internal/model/contact"
	"github.com/mustafizur/chat/backend/internal/service/reply"
)

// Responder produces the counterparty text for a scheduled reply. It must
// always return a usable text; failures are handled inside the implementation.
type Responder interface {
	Respond(ctx context.Context, c contact.Contact, history []chat.Message, userText string) string
}

// CannedResponder answers with the deterministic canned reply.
type CannedResponder struct{}

func (CannedResponder) Respond(_ context.Context, c contact.Contact, _ []chat.Message, userText string) string {
	return reply.Reply(userText, c.Name)
}
