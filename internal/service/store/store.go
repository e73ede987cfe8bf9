// Package store persists per-contact message lists in a key-value backend.
//
// Both directions are fail-soft: a missing or corrupt slot loads as an empty
// history and a failed write is logged and dropped. Callers keep their
// in-memory list as the source of truth for the running session.
package store

import (
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/mustafizur/chat/backend/internal/metrics"
	"github.com/mustafizur/chat/backend/internal/model/chat"
	"github.com/mustafizur/chat/backend/internal/storage/kv"
)

// DefaultNamespace prefixes every key written by the store.
const DefaultNamespace = "mustafizur-chat"

const messagesSegment = "/messages/"

// Store maps contact identifiers to persisted message lists.
type Store struct {
	backend   kv.Store
	namespace string
	metrics   *metrics.Metrics
}

// New returns a Store writing under namespace. An empty namespace falls back
// to DefaultNamespace.
func New(backend kv.Store, namespace string, m *metrics.Metrics) *Store {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Store{backend: backend, namespace: namespace, metrics: m}
}

// Namespace reports the key prefix in use.
func (s *Store) Namespace() string {
	return s.namespace
}

// Key derives the storage key for a contact: <namespace>/messages/<contactID>.
func (s *Store) Key(contactID string) string {
	return s.prefix() + contactID
}

func (s *Store) prefix() string {
	return s.namespace + messagesSegment
}

// Load returns the persisted list for contactID, or an empty list when the
// slot is missing, unreadable or does not hold a JSON array of messages.
func (s *Store) Load(contactID string) []chat.Message {
	raw, err := s.backend.Get(s.Key(contactID))
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			log.Printf("[store] load %s failed: %v", contactID, err)
			s.metrics.LoadFallback("backend")
		}
		return []chat.Message{}
	}
	if len(raw) == 0 {
		return []chat.Message{}
	}

	if !json.Valid(raw) {
		log.Printf("[store] discarding malformed history for %s", contactID)
		s.metrics.LoadFallback("malformed")
		return []chat.Message{}
	}

	var messages []chat.Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		log.Printf("[store] discarding non-array history for %s: %v", contactID, err)
		s.metrics.LoadFallback("not_array")
		return []chat.Message{}
	}
	if messages == nil {
		return []chat.Message{}
	}
	return messages
}

// Save writes the full list for contactID. Errors are swallowed.
func (s *Store) Save(contactID string, messages []chat.Message) {
	if messages == nil {
		messages = []chat.Message{}
	}

	data, err := json.Marshal(messages)
	if err != nil {
		log.Printf("[store] encode %s failed: %v", contactID, err)
		s.metrics.PersistFailed()
		return
	}

	if err := s.backend.Set(s.Key(contactID), data); err != nil {
		log.Printf("[store] save %s failed: %v", contactID, err)
		s.metrics.PersistFailed()
	}
}

// Contacts lists the contact identifiers that have a persisted slot.
func (s *Store) Contacts() ([]string, error) {
	keys, err := s.backend.Keys(s.prefix())
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, s.prefix()))
	}
	return ids, nil
}
