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
)

func setupChatRouter(handler *ChatHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/chats", handler.GetChats)
	r.GET("/chats/:id", handler.GetChat)
	r.POST("/chats", handler.CreateChat)
	r.PUT("/chats/read/:id", handler.ReadChat)
	r.PUT("/chats/:id", handler.DeleteChat)
	return r
}

func TestGetChatsSuccess(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewChatHandler(chatRepo, userRepo, nil)
	router := setupChatRouter(handler)

	chat := models.Chat{ID: 3, User1ID: 1, User2ID: 2, LastMessage: "hi"}
	chat.Normalize()
	chatRepo.On("ListChats", mock.Anything, 1, 1, 10).Return([]models.Chat{chat}, 1, nil).Once()
	userRepo.On("GetUserSummaries", mock.Anything, []int{2}).
		Return(map[int]models.UserSummary{2: {ID: 2, FirstName: "Bob"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Message string        `json:"message"`
		Data    []models.Chat `json:"data"`
		Total   int           `json:"total"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Get chats successfully", resp.Message)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Data, 1)
	require.NotNil(t, resp.Data[0].Receiver)
	assert.Equal(t, "Bob", resp.Data[0].Receiver.FirstName)

	chatRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestGetChatsRepoError(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(chatRepo, new(mocks.UserRepositoryMock), nil)
	router := setupChatRouter(handler)

	chatRepo.On("ListChats", mock.Anything, 1, 1, 10).Return(([]models.Chat)(nil), 0, assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	chatRepo.AssertExpectations(t)
}

func TestGetChatMarksSeen(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewChatHandler(chatRepo, userRepo, nil)
	router := setupChatRouter(handler)

	chat := models.Chat{ID: 5, User1ID: 1, User2ID: 2}
	chat.Normalize()
	chatRepo.On("GetChat", mock.Anything, 5).Return(chat, nil).Once()
	chatRepo.On("MarkSeen", mock.Anything, 5, 1).Return(nil).Once()
	userRepo.On("GetUserSummary", mock.Anything, 2).Return(models.UserSummary{ID: 2}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Message string      `json:"message"`
		Data    models.Chat `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Get chat successfully", resp.Message)
	assert.Contains(t, resp.Data.SeenBy, int64(1))
	chatRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestGetChatNotParticipant(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(chatRepo, new(mocks.UserRepositoryMock), nil)
	router := setupChatRouter(handler)

	chat := models.Chat{ID: 5, User1ID: 7, User2ID: 8}
	chat.Normalize()
	chatRepo.On("GetChat", mock.Anything, 5).Return(chat, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	chatRepo.AssertExpectations(t)
}

func TestCreateChatExisting(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewChatHandler(chatRepo, userRepo, nil)
	router := setupChatRouter(handler)

	userRepo.On("GetUserSummary", mock.Anything, 2).Return(models.UserSummary{ID: 2, FirstName: "Bob"}, nil).Once()
	chat := models.Chat{ID: 9, User1ID: 1, User2ID: 2}
	chat.Normalize()
	chatRepo.On("FindChatBetween", mock.Anything, 1, 2).Return(chat, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats", bytes.NewBufferString(`{"receiverId":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Message string      `json:"message"`
		Data    models.Chat `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "OK", resp.Message)
	assert.Equal(t, 9, resp.Data.ID)
	chatRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestCreateChatStagesSentinel(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewChatHandler(chatRepo, userRepo, nil)
	router := setupChatRouter(handler)

	userRepo.On("GetUserSummary", mock.Anything, 2).Return(models.UserSummary{ID: 2}, nil).Once()
	chatRepo.On("FindChatBetween", mock.Anything, 1, 2).Return(models.Chat{}, repositories.ErrChatNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats", bytes.NewBufferString(`{"receiverId":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data models.Chat `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 0, resp.Data.ID)
	require.NotNil(t, resp.Data.Receiver)
	assert.Equal(t, 2, resp.Data.Receiver.ID)
	chatRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestCreateChatSelfOrMissingReceiver(t *testing.T) {
	handler := NewChatHandler(new(mocks.ChatRepositoryMock), new(mocks.UserRepositoryMock), nil)
	router := setupChatRouter(handler)

	for _, body := range []string{`{}`, `{"receiverId":1}`} {
		req := httptest.NewRequest(http.MethodPost, "/chats", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestReadChatSuccess(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(chatRepo, new(mocks.UserRepositoryMock), nil)
	router := setupChatRouter(handler)

	chatRepo.On("IsParticipant", mock.Anything, 4, 1).Return(true, nil).Once()
	chatRepo.On("MarkSeen", mock.Anything, 4, 1).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/chats/read/4", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	chatRepo.AssertExpectations(t)
}

func TestDeleteChatHides(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(chatRepo, new(mocks.UserRepositoryMock), nil)
	router := setupChatRouter(handler)

	chatRepo.On("HideChat", mock.Anything, 4, 1).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/chats/4", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Delete chat successfully", resp["message"])
	chatRepo.AssertExpectations(t)
}

func TestDeleteChatNotFound(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(chatRepo, new(mocks.UserRepositoryMock), nil)
	router := setupChatRouter(handler)

	chatRepo.On("HideChat", mock.Anything, 99, 1).Return(repositories.ErrChatNotFound).Once()

	req := httptest.NewRequest(http.MethodPut, "/chats/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	chatRepo.AssertExpectations(t)
}
