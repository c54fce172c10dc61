package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"estate-service/internal/mocks"
	"estate-service/internal/models"
	"estate-service/internal/repositories"
	"estate-service/internal/ws"
)

func setupMessageRouter(handler *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/messages/:chatId", handler.GetMessages)
	r.POST("/messages/:chatId", handler.CreateMessage)
	r.PUT("/messages/:id", handler.UpdateMessage)
	return r
}

func newTestMessageHandler(messages *mocks.MessageRepositoryMock, chats *mocks.ChatRepositoryMock, users *mocks.UserRepositoryMock) *MessageHandler {
	return NewMessageHandler(messages, chats, users, ws.NewHub(), nil)
}

func TestGetMessagesSuccess(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := newTestMessageHandler(messageRepo, chatRepo, new(mocks.UserRepositoryMock))
	router := setupMessageRouter(handler)

	chat := models.Chat{ID: 5, User1ID: 1, User2ID: 2}
	chat.Normalize()
	chatRepo.On("GetChat", mock.Anything, 5).Return(chat, nil).Once()
	messageRepo.On("ListMessages", mock.Anything, chat, 1, 1).
		Return([]models.Message{{ID: 7, ChatID: 5, UserID: 2, Text: "hi"}}, 1, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Message string           `json:"message"`
		Data    []models.Message `json:"data"`
		Total   int              `json:"total"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Data, 1)
	chatRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

// A chat the caller does not participate in is indistinguishable from a
// missing one.
func TestGetMessagesNonParticipant(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := newTestMessageHandler(messageRepo, chatRepo, new(mocks.UserRepositoryMock))
	router := setupMessageRouter(handler)

	chat := models.Chat{ID: 5, User1ID: 7, User2ID: 8}
	chat.Normalize()
	chatRepo.On("GetChat", mock.Anything, 5).Return(chat, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Chat not found", resp["message"])
	messageRepo.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	chatRepo.AssertExpectations(t)
}

func TestCreateMessageSentinelCreatesChat(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	chatRepo := new(mocks.ChatRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := newTestMessageHandler(messageRepo, chatRepo, userRepo)
	router := setupMessageRouter(handler)

	chat := models.Chat{ID: 11, User1ID: 1, User2ID: 2, LastMessage: "hi", SeenBy: []int64{1}}
	chat.Normalize()
	messageRepo.On("SendMessage", mock.Anything, 0, 1, 2, "hi").
		Return(models.Message{ID: 1, ChatID: 11, UserID: 1, Text: "hi"}, chat, nil).Once()
	userRepo.On("GetUserSummary", mock.Anything, 2).Return(models.UserSummary{ID: 2, FirstName: "Bob"}, nil).Once()

	body := bytes.NewBufferString(`{"text":"hi","receiverId":2}`)
	req := httptest.NewRequest(http.MethodPost, "/messages/0", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Message string `json:"message"`
		Data    struct {
			models.Message
			Chat models.Chat `json:"chat"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Create message successfully", resp.Message)
	assert.Equal(t, 11, resp.Data.Chat.ID)
	assert.Equal(t, "hi", resp.Data.Chat.LastMessage)
	require.NotNil(t, resp.Data.Chat.Receiver)
	assert.Equal(t, "Bob", resp.Data.Chat.Receiver.FirstName)
	messageRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestCreateMessageSentinelWithoutReceiver(t *testing.T) {
	handler := newTestMessageHandler(new(mocks.MessageRepositoryMock), new(mocks.ChatRepositoryMock), new(mocks.UserRepositoryMock))
	router := setupMessageRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/messages/0", bytes.NewBufferString(`{"text":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateMessageChatNotFound(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := newTestMessageHandler(messageRepo, new(mocks.ChatRepositoryMock), new(mocks.UserRepositoryMock))
	router := setupMessageRouter(handler)

	messageRepo.On("SendMessage", mock.Anything, 99, 1, 0, "hi").
		Return(models.Message{}, models.Chat{}, repositories.ErrChatNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/99", bytes.NewBufferString(`{"text":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestUpdateMessageForbiddenForNonAuthor(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := newTestMessageHandler(messageRepo, chatRepo, new(mocks.UserRepositoryMock))
	router := setupMessageRouter(handler)

	chat := models.Chat{ID: 5, User1ID: 1, User2ID: 2}
	chat.Normalize()
	chatRepo.On("GetChat", mock.Anything, 5).Return(chat, nil).Once()
	messageRepo.On("GetMessage", mock.Anything, 7).Return(models.Message{ID: 7, ChatID: 5, UserID: 2}, nil).Once()

	body := bytes.NewBufferString(`{"chatId":5,"text":"edited"}`)
	req := httptest.NewRequest(http.MethodPut, "/messages/7", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	messageRepo.AssertNotCalled(t, "UpdateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	chatRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestUpdateMessageEditPropagatesLastMessage(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := newTestMessageHandler(messageRepo, chatRepo, new(mocks.UserRepositoryMock))
	router := setupMessageRouter(handler)

	chat := models.Chat{ID: 5, User1ID: 1, User2ID: 2, LastMessage: "old"}
	chat.Normalize()
	chatRepo.On("GetChat", mock.Anything, 5).Return(chat, nil).Once()
	messageRepo.On("GetMessage", mock.Anything, 7).Return(models.Message{ID: 7, ChatID: 5, UserID: 1, Text: "old"}, nil).Once()
	newText := "edited"
	messageRepo.On("UpdateMessage", mock.Anything, 7, false, &newText).
		Return(models.Message{ID: 7, ChatID: 5, UserID: 1, Text: "edited", IsUpdated: true}, nil).Once()
	messageRepo.On("UpdateLastMessage", mock.Anything, 5, "edited").Return(nil).Once()

	body := bytes.NewBufferString(`{"chatId":5,"text":"edited","lastMessageId":7}`)
	req := httptest.NewRequest(http.MethodPut, "/messages/7", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Message string `json:"message"`
		Data    struct {
			models.Message
			LastMessage string `json:"lastMessage"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Update message successfully", resp.Message)
	assert.Equal(t, "edited", resp.Data.LastMessage)
	assert.True(t, resp.Data.IsUpdated)
	chatRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestUpdateMessageEditNonLastLeavesPreview(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := newTestMessageHandler(messageRepo, chatRepo, new(mocks.UserRepositoryMock))
	router := setupMessageRouter(handler)

	chat := models.Chat{ID: 5, User1ID: 1, User2ID: 2, LastMessage: "newest"}
	chat.Normalize()
	chatRepo.On("GetChat", mock.Anything, 5).Return(chat, nil).Once()
	messageRepo.On("GetMessage", mock.Anything, 7).Return(models.Message{ID: 7, ChatID: 5, UserID: 1}, nil).Once()
	newText := "edited"
	messageRepo.On("UpdateMessage", mock.Anything, 7, false, &newText).
		Return(models.Message{ID: 7, ChatID: 5, UserID: 1, Text: "edited", IsUpdated: true}, nil).Once()

	body := bytes.NewBufferString(`{"chatId":5,"text":"edited","lastMessageId":9}`)
	req := httptest.NewRequest(http.MethodPut, "/messages/7", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			LastMessage string `json:"lastMessage"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "newest", resp.Data.LastMessage)
	messageRepo.AssertNotCalled(t, "UpdateLastMessage", mock.Anything, mock.Anything, mock.Anything)
	chatRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestUpdateMessageUnsendSynthesizesPreview(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	chatRepo := new(mocks.ChatRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := newTestMessageHandler(messageRepo, chatRepo, userRepo)
	router := setupMessageRouter(handler)

	chat := models.Chat{ID: 5, User1ID: 1, User2ID: 2, LastMessage: "bye"}
	chat.Normalize()
	chatRepo.On("GetChat", mock.Anything, 5).Return(chat, nil).Once()
	messageRepo.On("GetMessage", mock.Anything, 7).Return(models.Message{ID: 7, ChatID: 5, UserID: 1, Text: "bye"}, nil).Once()
	messageRepo.On("UpdateMessage", mock.Anything, 7, true, (*string)(nil)).
		Return(models.Message{ID: 7, ChatID: 5, UserID: 1, IsDeleted: true}, nil).Once()
	userRepo.On("GetUser", mock.Anything, 1).Return(models.User{ID: 1, FirstName: "Ann", LastName: "Lee"}, nil).Once()
	messageRepo.On("UpdateLastMessage", mock.Anything, 5, "Ann Lee unsent a message").Return(nil).Once()

	body := bytes.NewBufferString(`{"chatId":5,"isDeleted":true,"lastMessageId":7}`)
	req := httptest.NewRequest(http.MethodPut, "/messages/7", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			LastMessage string `json:"lastMessage"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Ann Lee unsent a message", resp.Data.LastMessage)
	chatRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}
