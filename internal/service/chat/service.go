package chat

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mustafizur/chat/backend/internal/metrics"
	"github.com/mustafizur/chat/backend/internal/model/chat"
	"github.com/mustafizur/chat/backend/internal/model/contact"
	"github.com/mustafizur/chat/backend/internal/service/reply"
	"github.com/mustafizur/chat/backend/internal/service/store"
)

const (
	defaultReplyTimeout = 30 * time.Second
	subscriberBuffer    = 32
)

// Options tunes the conversation controller. Zero values pick production
// defaults.
type Options struct {
	Window          reply.Window
	Responder       Responder
	Scheduler       Scheduler
	PersistDebounce time.Duration
	ReplyTimeout    time.Duration
	Metrics         *metrics.Metrics
	Now             func() time.Time
	NewID           func() string
}

// Service owns the conversation state of all contacts, the active selection
// and the scheduled synthetic replies. Every event is applied as one critical
// section; persistence and notifications run after the lock is released.
type Service struct {
	mu       sync.Mutex
	contacts []contact.Contact
	index    map[string]int
	active   string
	messages map[string][]chat.Message
	pending  map[string]int

	store     *store.Store
	persist   *persister
	window    reply.Window
	responder Responder
	sched     Scheduler
	timeout   time.Duration
	metrics   *metrics.Metrics
	now       func() time.Time
	newID     func() string

	inflight sync.WaitGroup

	subMu   sync.Mutex
	subs    map[int]chan chat.Event
	nextSub int
}

// NewService builds the controller over the roster and hydrates every
// contact's history from msgStore so the sidebar previews are populated.
// The first roster entry starts out active.
func NewService(roster contact.Store, msgStore *store.Store, opts Options) *Service {
	if opts.Window == (reply.Window{}) {
		opts.Window = reply.DefaultWindow()
	}
	if opts.Responder == nil {
		opts.Responder = CannedResponder{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler()
	}
	if opts.ReplyTimeout <= 0 {
		opts.ReplyTimeout = defaultReplyTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	items := roster.List()
	s := &Service{
		contacts:  items,
		index:     make(map[string]int, len(items)),
		messages:  make(map[string][]chat.Message, len(items)),
		pending:   make(map[string]int),
		store:     msgStore,
		window:    opts.Window,
		responder: opts.Responder,
		sched:     opts.Scheduler,
		timeout:   opts.ReplyTimeout,
		metrics:   opts.Metrics,
		now:       opts.Now,
		newID:     opts.NewID,
		subs:      make(map[int]chan chat.Event),
	}
	s.persist = newPersister(opts.PersistDebounce, opts.Scheduler, s.snapshot, msgStore.Save)

	for i, c := range items {
		s.index[c.ID] = i
	}
	if len(items) > 0 {
		s.active = items[0].ID
	}

	s.mu.Lock()
	for _, c := range items {
		s.ensureLoadedLocked(c.ID)
	}
	s.mu.Unlock()

	return s
}

// Snapshot is the read state consumed by the presentation layer.
type Snapshot struct {
	Contacts        []contact.Contact `json:"contacts"`
	ActiveContactID string            `json:"activeContactId"`
	ActiveMessages  []chat.Message    `json:"activeMessages"`
}

// Snapshot captures contacts, active selection and active messages atomically.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Contacts:        append([]contact.Contact(nil), s.contacts...),
		ActiveContactID: s.active,
		ActiveMessages:  s.copyLocked(s.active),
	}
}

// Contacts returns the roster with current previews.
func (s *Service) Contacts() []contact.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]contact.Contact(nil), s.contacts...)
}

// Contact looks up one roster entry with its current preview.
func (s *Service) Contact(id string) (contact.Contact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return contact.Contact{}, false
	}
	return s.contacts[i], true
}

// ActiveContactID reports the contact whose conversation is displayed.
func (s *Service) ActiveContactID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ActiveMessages returns a copy of the active contact's list.
func (s *Service) ActiveMessages() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked(s.active)
}

// Messages returns a copy of a contact's list, empty for unknown contacts.
func (s *Service) Messages(contactID string) []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[contactID]; !ok {
		return []chat.Message{}
	}
	s.ensureLoadedLocked(contactID)
	return s.copyLocked(contactID)
}

// State reports whether a contact is waiting on a synthetic reply.
func (s *Service) State(contactID string) chat.ReplyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(contactID)
}

// SelectContact makes contactID active, hydrating its history on first use.
// It reports false for contacts outside the roster, which are ignored.
func (s *Service) SelectContact(contactID string) bool {
	s.mu.Lock()
	if _, ok := s.index[contactID]; !ok {
		s.mu.Unlock()
		return false
	}
	if s.active == contactID {
		s.mu.Unlock()
		return true
	}
	s.active = contactID
	s.ensureLoadedLocked(contactID)
	s.mu.Unlock()

	s.publish(chat.Event{Type: chat.EventActive, ContactID: contactID})
	return true
}

// SendMessage appends a self-authored message to the active contact and
// schedules one synthetic reply for that same contact. Text that is empty
// after trimming is ignored and reported with ok=false.
func (s *Service) SendMessage(text string) (chat.Message, bool) {
	if strings.TrimSpace(text) == "" {
		s.metrics.SendRejected()
		return chat.Message{}, false
	}

	s.mu.Lock()
	i, ok := s.index[s.active]
	if !ok {
		s.mu.Unlock()
		return chat.Message{}, false
	}
	target := s.contacts[i]
	msg := s.newMessage(text, chat.SenderMe)
	s.appendLocked(target.ID, msg)
	s.pending[target.ID]++
	history := s.copyLocked(target.ID)
	ev := s.messageEventLocked(target.ID, msg)
	s.inflight.Add(1)
	s.mu.Unlock()

	s.metrics.MessageSent()
	s.persist.markDirty(target.ID)
	s.publish(ev)

	s.scheduleReply(target, history, text)
	return msg, true
}

// scheduleReply binds the reply to target by value; the active selection at
// fire time is never consulted.
func (s *Service) scheduleReply(target contact.Contact, history []chat.Message, userText string) {
	s.metrics.ReplyScheduled()
	s.sched.AfterFunc(s.window.Delay(), func() {
		defer s.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		text := s.responder.Respond(ctx, target, history, userText)
		cancel()

		s.deliverReply(target.ID, text)
	})
}

func (s *Service) deliverReply(contactID, text string) {
	s.mu.Lock()
	msg := s.newMessage(text, chat.SenderThem)
	s.appendLocked(contactID, msg)
	if s.pending[contactID] > 0 {
		s.pending[contactID]--
	}
	if s.pending[contactID] == 0 {
		delete(s.pending, contactID)
	}
	ev := s.messageEventLocked(contactID, msg)
	s.mu.Unlock()

	s.metrics.ReplyDelivered()
	s.persist.markDirty(contactID)
	s.publish(ev)
	log.Printf("[chat] delivered reply to %s", contactID)
}

// Flush writes every conversation with unsaved changes.
func (s *Service) Flush() {
	s.persist.flush()
}

// Shutdown waits for scheduled replies to land (bounded by ctx), flushes
// persistence and closes all subscriptions.
func (s *Service) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
		log.Printf("[chat] shutdown with replies still pending: %v", err)
	}

	s.Flush()

	s.subMu.Lock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.subMu.Unlock()
	return err
}

// Subscribe returns a stream of change events and a function that ends the
// subscription. Events are dropped for subscribers that fall behind.
func (s *Service) Subscribe() (<-chan chat.Event, func()) {
	ch := make(chan chat.Event, subscriberBuffer)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			if c, ok := s.subs[id]; ok {
				close(c)
				delete(s.subs, id)
			}
			s.subMu.Unlock()
		})
	}
}

func (s *Service) publish(ev chat.Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Service) newMessage(text string, sender chat.Sender) chat.Message {
	return chat.Message{
		ID:        s.newID(),
		Text:      text,
		Timestamp: s.now().UnixMilli(),
		Sender:    sender,
	}
}

func (s *Service) ensureLoadedLocked(contactID string) {
	if _, ok := s.messages[contactID]; ok {
		return
	}
	s.messages[contactID] = s.store.Load(contactID)
	s.refreshPreviewLocked(contactID)
}

func (s *Service) appendLocked(contactID string, msg chat.Message) {
	s.ensureLoadedLocked(contactID)
	s.messages[contactID] = append(s.messages[contactID], msg)
	s.refreshPreviewLocked(contactID)
}

func (s *Service) refreshPreviewLocked(contactID string) {
	i, ok := s.index[contactID]
	if !ok {
		return
	}
	list := s.messages[contactID]
	if len(list) == 0 {
		s.contacts[i].LastMessage = nil
		return
	}
	text := list[len(list)-1].Text
	s.contacts[i].LastMessage = &text
}

func (s *Service) copyLocked(contactID string) []chat.Message {
	list := s.messages[contactID]
	out := make([]chat.Message, len(list))
	copy(out, list)
	return out
}

func (s *Service) stateLocked(contactID string) chat.ReplyState {
	if s.pending[contactID] > 0 {
		return chat.StateAwaiting
	}
	return chat.StateIdle
}

func (s *Service) messageEventLocked(contactID string, msg chat.Message) chat.Event {
	ev := chat.Event{
		Type:      chat.EventMessage,
		ContactID: contactID,
		Message:   &msg,
		State:     s.stateLocked(contactID),
	}
	if i, ok := s.index[contactID]; ok {
		ev.LastMessage = s.contacts[i].LastMessage
	}
	return ev
}

func (s *Service) snapshot(contactID string) []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked(contactID)
}
