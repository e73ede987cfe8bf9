package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	modelchat "github.com/mustafizur/chat/backend/internal/model/chat"
	"github.com/mustafizur/chat/backend/internal/model/contact"
	chatservice "github.com/mustafizur/chat/backend/internal/service/chat"
	"github.com/mustafizur/chat/backend/internal/service/store"
	"github.com/mustafizur/chat/backend/internal/storage/kv"
)

type idleScheduler struct{}

func (idleScheduler) AfterFunc(time.Duration, func()) {}

type received struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dial(t *testing.T) (*websocket.Conn, *chatservice.Service) {
	t.Helper()
	msgStore := store.New(kv.NewMemory(), "", nil)
	chatSvc := chatservice.NewService(contact.NewMemoryStore(contact.Seed()), msgStore, chatservice.Options{
		Scheduler: idleScheduler{},
	})

	r := chi.NewRouter()
	NewWebSocketHandler(chatSvc).RegisterWebSocketRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, chatSvc
}

func next(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg received
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read err: %v", err)
	}
	return msg
}

func TestWebSocketSelectAndSend(t *testing.T) {
	conn, chatSvc := dial(t)

	if msg := next(t, conn); msg.Type != "state" {
		t.Fatalf("expected initial state, got %s", msg.Type)
	}

	if err := conn.WriteJSON(inboundMessage{Type: "select", ContactID: "bob"}); err != nil {
		t.Fatalf("write err: %v", err)
	}
	if msg := next(t, conn); msg.Type != string(modelchat.EventActive) {
		t.Fatalf("expected active event, got %s", msg.Type)
	}

	if err := conn.WriteJSON(inboundMessage{Type: "send", Text: "yo"}); err != nil {
		t.Fatalf("write err: %v", err)
	}
	msg := next(t, conn)
	if msg.Type != string(modelchat.EventMessage) {
		t.Fatalf("expected message event, got %s", msg.Type)
	}
	var ev modelchat.Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.ContactID != "bob" || ev.Message == nil || ev.Message.Text != "yo" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if len(chatSvc.Messages("bob")) != 1 {
		t.Fatal("expected message stored for bob")
	}
}

func TestWebSocketRejectsUnknown(t *testing.T) {
	conn, _ := dial(t)
	next(t, conn)

	if err := conn.WriteJSON(inboundMessage{Type: "select", ContactID: "ghost"}); err != nil {
		t.Fatalf("write err: %v", err)
	}
	if msg := next(t, conn); msg.Type != "error" {
		t.Fatalf("expected error reply, got %s", msg.Type)
	}

	if err := conn.WriteJSON(inboundMessage{Type: "dance"}); err != nil {
		t.Fatalf("write err: %v", err)
	}
	if msg := next(t, conn); msg.Type != "error" {
		t.Fatalf("expected error reply, got %s", msg.Type)
	}
}

func TestHandleMessageBlankSendIsSilent(t *testing.T) {
	msgStore := store.New(kv.NewMemory(), "", nil)
	chatSvc := chatservice.NewService(contact.NewMemoryStore(contact.Seed()), msgStore, chatservice.Options{
		Scheduler: idleScheduler{},
	})
	h := NewWebSocketHandler(chatSvc)

	if _, ok := h.handleMessage(&inboundMessage{Type: "send", Text: "  "}); ok {
		t.Fatal("blank send must not produce a reply")
	}
	if len(chatSvc.ActiveMessages()) != 0 {
		t.Fatal("blank send must not be stored")
	}
}
