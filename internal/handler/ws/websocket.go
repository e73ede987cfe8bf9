package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/mustafizur/chat/backend/internal/model/chat"
	chatservice "github.com/mustafizur/chat/backend/internal/service/chat"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	outboxSize   = 32
)

// WebSocketHandler WebSocket聊天处理器，转发会话事件并接收发送/切换指令
type WebSocketHandler struct {
	chatSvc  *chatservice.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(chatSvc *chatservice.Service) *WebSocketHandler {
	return &WebSocketHandler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	ContactID string `json:"contactId,omitempty"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func newOutgoing(typ string, data interface{}) outgoingMessage {
	return outgoingMessage{Type: typ, Data: data, Timestamp: time.Now().UnixMilli()}
}

// handleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] new connection from %s", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events, unsubscribe := h.chatSvc.Subscribe()
	defer unsubscribe()

	outbox := make(chan outgoingMessage, outboxSize)
	outbox <- newOutgoing("state", h.chatSvc.Snapshot())

	go h.writeLoop(ctx, cancel, conn, outbox, events)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		if reply, ok := h.handleMessage(&msg); ok {
			select {
			case outbox <- reply:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handleMessage applies one inbound command. Only failures produce a direct
// reply; successful mutations reach the client through the event stream.
func (h *WebSocketHandler) handleMessage(msg *inboundMessage) (outgoingMessage, bool) {
	switch msg.Type {
	case "send":
		// blank text is a silent no-op, like the REST endpoint
		h.chatSvc.SendMessage(msg.Text)
		return outgoingMessage{}, false
	case "select":
		if !h.chatSvc.SelectContact(msg.ContactID) {
			return newOutgoing("error", map[string]string{"error": "contact not found"}), true
		}
		return outgoingMessage{}, false
	case "state":
		return newOutgoing("state", h.chatSvc.Snapshot()), true
	default:
		return newOutgoing("error", map[string]string{"error": "unknown message type: " + msg.Type}), true
	}
}

// writeLoop is the connection's only writer.
func (h *WebSocketHandler) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, outbox <-chan outgoingMessage, events <-chan chat.Event) {
	defer cancel()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-outbox:
			if err := writeJSON(conn, msg); err != nil {
				log.Printf("[ws] write error: %v", err)
				return
			}
		case ev, ok := <-events:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(writeWait))
				return
			}
			if err := writeJSON(conn, newOutgoing(string(ev.Type), ev)); err != nil {
				log.Printf("[ws] write error: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeJSON(conn *websocket.Conn, msg outgoingMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
