package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/mustafizur/chat/backend/internal/config"
	"github.com/mustafizur/chat/backend/internal/model/chat"
	"github.com/mustafizur/chat/backend/internal/model/contact"
	"github.com/mustafizur/chat/backend/internal/service/reply"
)

const historyLimit = 10

// Responder generates counterparty replies with a chat model, falling back
// to the canned reply whenever the model fails or answers with nothing.
type Responder struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewResponder builds a responder on the Ark model described by cfg.
func NewResponder(ctx context.Context, cfg config.AIConfig) (*Responder, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewResponderWithModel(ctx, chatModel)
}

// NewResponderWithModel compiles the prompt chain around an existing model.
func NewResponderWithModel(ctx context.Context, chatModel model.ChatModel) (*Responder, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Responder{chain: runnable}, nil
}

// Respond implements the controller's responder contract.
func (r *Responder) Respond(ctx context.Context, c contact.Contact, history []chat.Message, userText string) string {
	response, err := r.chain.Invoke(ctx, buildChainInput(c, history, userText))
	if err != nil {
		log.Printf("[ai] reply for contact=%s failed, using canned reply: %v", c.ID, err)
		return reply.Reply(userText, c.Name)
	}

	text := strings.TrimSpace(response.Content)
	if text == "" {
		return reply.Reply(userText, c.Name)
	}
	log.Printf("[ai] generated reply for contact=%s, length=%d", c.ID, len(text))
	return text
}

func buildChainInput(c contact.Contact, history []chat.Message, userText string) map[string]any {
	// history already ends with the message being answered
	if n := len(history); n > 0 && history[n-1].Sender == chat.SenderMe && history[n-1].Text == userText {
		history = history[:n-1]
	}
	return map[string]any{
		"system":  buildSystemPrompt(c),
		"history": buildHistoryMessages(history),
		"query":   userText,
	}
}

func buildSystemPrompt(c contact.Contact) string {
	return fmt.Sprintf(`You are %s, chatting with a friend in a WhatsApp-like messaging app.

Rules:
- Answer in one or two short sentences, like a text message.
- Stay in character as %s; never mention being an assistant or a model.
- Match the language the user writes in.`, c.Name, c.Name)
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
		case chat.SenderMe:
			history = append(history, schema.UserMessage(msg.Text))
		case chat.SenderThem:
			history = append(history, schema.AssistantMessage(msg.Text, nil))
		}
	}

	return history
}
