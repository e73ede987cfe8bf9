package chat

// Sender tags who authored a message.
type Sender string

const (
	SenderMe   Sender = "me"
	SenderThem Sender = "them"
)

// Message is one immutable entry of a contact's conversation.
// Timestamp is milliseconds since the Unix epoch.
type Message struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	Sender    Sender `json:"sender"`
}
