package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/mustafizur/chat/backend/internal/model/chat"
	chatService "github.com/mustafizur/chat/backend/internal/service/chat"
	"github.com/mustafizur/chat/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
	limiter *rate.Limiter
}

// New 创建聊天处理器。limiter 为 nil 时不限制发送频率。
func New(chatSvc *chatService.Service, limiter *rate.Limiter) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		limiter: limiter,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/state", h.handleState)
	r.Post("/messages", h.handleSendMessage)
}

type sendResponse struct {
	Accepted  bool           `json:"accepted"`
	Message   *chat.Message  `json:"message,omitempty"`
	ContactID string         `json:"contactId"`
	Messages  []chat.Message `json:"messages"`
}

// handleState 返回前端渲染所需的完整状态
func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.chatSvc.Snapshot())
}

// handleSendMessage 向当前联系人发送消息，空白消息被静默忽略
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}

	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if h.limiter != nil && !h.limiter.Allow() {
		utils.RespondError(w, http.StatusTooManyRequests, "sending too fast")
		return
	}

	resp := sendResponse{}
	if msg, ok := h.chatSvc.SendMessage(payload.Text); ok {
		resp.Accepted = true
		resp.Message = &msg
	}

	snap := h.chatSvc.Snapshot()
	resp.ContactID = snap.ActiveContactID
	resp.Messages = snap.ActiveMessages

	utils.RespondJSON(w, http.StatusAccepted, resp)
}
