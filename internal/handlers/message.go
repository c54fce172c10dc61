package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"estate-service/internal/models"
	"estate-service/internal/repositories"
	"estate-service/internal/telemetry"
	"estate-service/internal/ws"
)

// MessageHandler manages chat message endpoints.
type MessageHandler struct {
	messages repositories.MessageRepository
	chats    repositories.ChatRepository
	users    repositories.UserRepository
	hub      *ws.Hub
	audit    *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messages repositories.MessageRepository, chats repositories.ChatRepository, users repositories.UserRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{messages: messages, chats: chats, users: users, hub: hub, audit: audit}
}

// GetMessages returns a page of the chat's history bounded by the caller's
// visibility window. Non-participants cannot distinguish the chat from a
// missing one.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chatId"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}
	userID := c.GetInt("userID")

	chat, err := h.chats.GetChat(c.Request.Context(), chatID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			respondMessage(c, http.StatusNotFound, "Chat not found")
			return
		}
		respondMessage(c, http.StatusInternalServerError, "Failed to get messages")
		return
	}
	if !chat.HasParticipant(userID) {
		respondMessage(c, http.StatusNotFound, "Chat not found")
		return
	}

	page := queryInt(c, "page", 1)
	msgs, total, err := h.messages.ListMessages(c.Request.Context(), chat, userID, page)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Failed to get messages")
		return
	}

	respondPage(c, http.StatusOK, "Get messages successfully", msgs, total)
}

// CreateMessage sends a message. Chat id 0 stands for a staged conversation:
// the chat is created (or found) for the caller and receiverId atomically
// with the first message.
func (h *MessageHandler) CreateMessage(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chatId"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}
	userID := c.GetInt("userID")

	var req struct {
		Text       string `json:"text" binding:"required"`
		ReceiverID int    `json:"receiverId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}
	if chatID == 0 && (req.ReceiverID == 0 || req.ReceiverID == userID) {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}

	msg, chat, err := h.messages.SendMessage(c.Request.Context(), chatID, userID, req.ReceiverID, req.Text)
	if err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			respondMessage(c, http.StatusNotFound, "Chat not found")
			return
		}
		respondMessage(c, http.StatusInternalServerError, "Create message failed")
		return
	}

	if summary, err := h.users.GetUserSummary(c.Request.Context(), chat.OtherParticipant(userID)); err == nil {
		chat.Receiver = &summary
	}

	h.hub.BroadcastMessage(chat.ID, msg)
	h.emitAudit(c, "INFO", "Message sent")

	respondData(c, http.StatusOK, "Create message successfully", struct {
		models.Message
		Chat models.Chat `json:"chat"`
	}{Message: msg, Chat: chat})
}

// UpdateMessage edits or unsends the caller's own message. When the target is
// the chat's current last message the chat preview follows: an edit carries
// the new text, an unsend a "<name> unsent a message" placeholder.
func (h *MessageHandler) UpdateMessage(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}
	userID := c.GetInt("userID")

	var req struct {
		IsDeleted     bool    `json:"isDeleted"`
		Text          *string `json:"text"`
		ChatID        int     `json:"chatId"`
		LastMessageID int     `json:"lastMessageId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}

	chat, err := h.chats.GetChat(c.Request.Context(), req.ChatID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			respondMessage(c, http.StatusNotFound, "Chat not found")
			return
		}
		respondMessage(c, http.StatusInternalServerError, "Update message failed")
		return
	}
	if !chat.HasParticipant(userID) {
		respondMessage(c, http.StatusNotFound, "Chat not found")
		return
	}

	existing, err := h.messages.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			respondMessage(c, http.StatusNotFound, "Message not found")
			return
		}
		respondMessage(c, http.StatusInternalServerError, "Update message failed")
		return
	}
	if existing.ChatID != chat.ID {
		respondMessage(c, http.StatusNotFound, "Message not found")
		return
	}
	if existing.UserID != userID {
		respondMessage(c, http.StatusForbidden, "Unauthorized")
		return
	}

	msg, err := h.messages.UpdateMessage(c.Request.Context(), messageID, req.IsDeleted, req.Text)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Update message failed")
		return
	}

	lastMessage := chat.LastMessage
	if req.LastMessageID == messageID {
		switch {
		case req.IsDeleted:
			caller, err := h.users.GetUser(c.Request.Context(), userID)
			if err != nil {
				respondMessage(c, http.StatusInternalServerError, "Update message failed")
				return
			}
			lastMessage = fmt.Sprintf("%s %s unsent a message", caller.FirstName, caller.LastName)
		case req.Text != nil:
			lastMessage = *req.Text
		}
		if lastMessage != chat.LastMessage {
			if err := h.messages.UpdateLastMessage(c.Request.Context(), chat.ID, lastMessage); err != nil {
				respondMessage(c, http.StatusInternalServerError, "Update message failed")
				return
			}
		}
	}

	h.hub.BroadcastMessageUpdate(chat.ID, msg)

	respondData(c, http.StatusOK, "Update message successfully", struct {
		models.Message
		LastMessage string `json:"lastMessage"`
	}{Message: msg, LastMessage: lastMessage})
}

func (h *MessageHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
