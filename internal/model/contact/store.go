package contact

// Store exposes the fixed contact roster.
type Store interface {
	List() []Contact
	FindByID(id string) (Contact, bool)
}

// MemoryStore implements Store with an in-memory slice. The roster never
// changes after construction.
type MemoryStore struct {
	items []Contact
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied contacts.
func NewMemoryStore(items []Contact) *MemoryStore {
	return &MemoryStore{items: append([]Contact(nil), items...)}
}

// List returns the roster in display order.
func (s *MemoryStore) List() []Contact {
	return append([]Contact(nil), s.items...)
}

// FindByID looks up a contact by identifier.
func (s *MemoryStore) FindByID(id string) (Contact, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Contact{}, false
}
