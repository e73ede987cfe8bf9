package contact

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	chatService "github.com/mustafizur/chat/backend/internal/service/chat"
	"github.com/mustafizur/chat/backend/pkg/utils"
)

// Handler 联系人相关的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建联系人处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册联系人相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/contacts", h.handleListContacts)
	r.Get("/contacts/{contactID}/messages", h.handleListMessages)
	r.Post("/contacts/{contactID}/select", h.handleSelectContact)
}

// handleListContacts 列出所有联系人及最新消息预览
func (h *Handler) handleListContacts(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.chatSvc.Contacts())
}

// handleListMessages 返回指定联系人的会话记录
func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")
	if _, ok := h.chatSvc.Contact(contactID); !ok {
		utils.RespondError(w, http.StatusNotFound, "contact not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.chatSvc.Messages(contactID))
}

// handleSelectContact 切换当前会话
func (h *Handler) handleSelectContact(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")
	if !h.chatSvc.SelectContact(contactID) {
		utils.RespondError(w, http.StatusNotFound, "contact not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.chatSvc.Snapshot())
}
