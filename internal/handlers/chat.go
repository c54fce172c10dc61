package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"estate-service/internal/models"
	"estate-service/internal/repositories"
	"estate-service/internal/telemetry"
)

// ChatHandler manages private chat endpoints.
type ChatHandler struct {
	chats repositories.ChatRepository
	users repositories.UserRepository
	audit *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(chats repositories.ChatRepository, users repositories.UserRepository, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{chats: chats, users: users, audit: audit}
}

// GetChats returns the caller's chats, most recent first, each annotated with
// the other participant's projection.
func (h *ChatHandler) GetChats(c *gin.Context) {
	userID := c.GetInt("userID")
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "perPage", 10)

	chats, total, err := h.chats.ListChats(c.Request.Context(), userID, page, perPage)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Failed to get chats")
		return
	}

	otherIDs := make([]int, 0, len(chats))
	for _, chat := range chats {
		otherIDs = append(otherIDs, chat.OtherParticipant(userID))
	}
	summaries, err := h.users.GetUserSummaries(c.Request.Context(), otherIDs)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Failed to get chats")
		return
	}
	for i := range chats {
		if summary, ok := summaries[chats[i].OtherParticipant(userID)]; ok {
			receiver := summary
			chats[i].Receiver = &receiver
		}
	}

	respondPage(c, http.StatusOK, "Get chats successfully", chats, total)
}

// GetChat returns one chat the caller participates in and marks it seen.
func (h *ChatHandler) GetChat(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}
	userID := c.GetInt("userID")

	chat, err := h.chats.GetChat(c.Request.Context(), chatID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			respondMessage(c, http.StatusNotFound, "Not found this chat")
			return
		}
		respondMessage(c, http.StatusInternalServerError, "Failed to get chat")
		return
	}
	if !chat.HasParticipant(userID) {
		respondMessage(c, http.StatusNotFound, "Not found this chat")
		return
	}

	if err := h.chats.MarkSeen(c.Request.Context(), chatID, userID); err != nil {
		respondMessage(c, http.StatusInternalServerError, "Failed to get chat")
		return
	}
	if !chat.SeenByUser(userID) {
		chat.SeenBy = append(chat.SeenBy, int64(userID))
	}

	if summary, err := h.users.GetUserSummary(c.Request.Context(), chat.OtherParticipant(userID)); err == nil {
		chat.Receiver = &summary
	}

	respondData(c, http.StatusOK, "Get chat successfully", chat)
}

// CreateChat finds the existing chat with the receiver or stages a new one.
// Nothing is persisted here; a staged chat carries the sentinel id 0 and
// becomes real on the first message.
func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req struct {
		ReceiverID int `json:"receiverId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ReceiverID == 0 {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}
	userID := c.GetInt("userID")
	if req.ReceiverID == userID {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}

	receiver, err := h.users.GetUserSummary(c.Request.Context(), req.ReceiverID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			respondMessage(c, http.StatusNotFound, "User not found")
			return
		}
		respondMessage(c, http.StatusInternalServerError, "Create chat failed")
		return
	}

	chat, err := h.chats.FindChatBetween(c.Request.Context(), userID, req.ReceiverID)
	if err == nil {
		chat.Receiver = &receiver
		respondData(c, http.StatusOK, "OK", chat)
		return
	}
	if !errors.Is(err, repositories.ErrChatNotFound) {
		respondMessage(c, http.StatusInternalServerError, "Create chat failed")
		return
	}

	staged := models.Chat{Receiver: &receiver}
	staged.UserIDs = []int{userID, req.ReceiverID}
	staged.CreatedBy = userID
	staged.SeenBy = []int64{}
	respondData(c, http.StatusOK, "OK", staged)
}

// ReadChat marks a chat seen for the caller.
func (h *ChatHandler) ReadChat(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}
	userID := c.GetInt("userID")

	member, err := h.chats.IsParticipant(c.Request.Context(), chatID, userID)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "Failed to read chat")
		return
	}
	if !member {
		respondMessage(c, http.StatusNotFound, "Not found this chat")
		return
	}

	if err := h.chats.MarkSeen(c.Request.Context(), chatID, userID); err != nil {
		respondMessage(c, http.StatusInternalServerError, "Failed to read chat")
		return
	}
	respondMessage(c, http.StatusOK, "OK")
}

// DeleteChat hides the chat for the caller by stamping their side's
// visibility boundary. Messages and the chat row itself are untouched.
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Bad request")
		return
	}

	if err := h.chats.HideChat(c.Request.Context(), chatID, c.GetInt("userID")); err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			respondMessage(c, http.StatusNotFound, "Not found this chat")
			return
		}
		respondMessage(c, http.StatusInternalServerError, "Delete chat failed")
		return
	}

	h.emitAudit(c, "INFO", "Chat hidden")
	respondMessage(c, http.StatusOK, "Delete chat successfully")
}

func (h *ChatHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
