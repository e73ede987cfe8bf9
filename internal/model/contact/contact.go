package contact

// Contact is a fixed conversational counterpart shown in the sidebar.
type Contact struct {
	ID          string  `json:"id" toml:"id"`
	Name        string  `json:"name" toml:"name"`
	AvatarColor string  `json:"avatarColor" toml:"avatar_color"`
	LastMessage *string `json:"lastMessage,omitempty" toml:"-"`
}

// Seed provides the default roster used when no roster file is configured.
func Seed() []Contact {
	return []Contact{
		{ID: "mustafizur", Name: "Mustafizur", AvatarColor: "#25D366"},
		{ID: "alice", Name: "Alice", AvatarColor: "#34B7F1"},
		{ID: "bob", Name: "Bob", AvatarColor: "#FFB020"},
		{ID: "support", Name: "Support", AvatarColor: "#FF5A5F"},
	}
}
