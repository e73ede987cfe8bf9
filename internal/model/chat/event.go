package chat

// EventType classifies controller change notifications.
type EventType string

const (
	EventMessage EventType = "message"
	EventActive  EventType = "active"
)

// ReplyState is the per-contact synthetic reply state.
type ReplyState string

const (
	StateIdle     ReplyState = "idle"
	StateAwaiting ReplyState = "awaiting-synthetic-reply"
)

// Event is published after every state change the UI has to render.
type Event struct {
	Type        EventType  `json:"type"`
	ContactID   string     `json:"contactId"`
	Message     *Message   `json:"message,omitempty"`
	LastMessage *string    `json:"lastMessage,omitempty"`
	State       ReplyState `json:"state,omitempty"`
}
