package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"estate-service/internal/models"
	"estate-service/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, params repositories.CreateUserParams) (models.User, error) {
	args := m.Called(ctx, params)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, id int) (models.User, error) {
	args := m.Called(ctx, id)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) UpdateUser(ctx context.Context, id int, params repositories.UpdateUserParams) (models.User, error) {
	args := m.Called(ctx, id, params)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) DeleteUser(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserRepositoryMock) GetUserSummary(ctx context.Context, id int) (models.UserSummary, error) {
	args := m.Called(ctx, id)
	var summary models.UserSummary
	if val := args.Get(0); val != nil {
		summary = val.(models.UserSummary)
	}
	return summary, args.Error(1)
}

func (m *UserRepositoryMock) GetUserSummaries(ctx context.Context, ids []int) (map[int]models.UserSummary, error) {
	args := m.Called(ctx, ids)
	var summaries map[int]models.UserSummary
	if val := args.Get(0); val != nil {
		summaries = val.(map[int]models.UserSummary)
	}
	return summaries, args.Error(1)
}

type PostRepositoryMock struct {
	mock.Mock
}

func (m *PostRepositoryMock) SearchPosts(ctx context.Context, filter models.PostFilter, page, perPage int) ([]models.Post, int, error) {
	args := m.Called(ctx, filter, page, perPage)
	var posts []models.Post
	if val := args.Get(0); val != nil {
		posts = val.([]models.Post)
	}
	return posts, args.Int(1), args.Error(2)
}

func (m *PostRepositoryMock) GetPost(ctx context.Context, id int) (models.Post, error) {
	args := m.Called(ctx, id)
	var post models.Post
	if val := args.Get(0); val != nil {
		post = val.(models.Post)
	}
	return post, args.Error(1)
}

func (m *PostRepositoryMock) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	args := m.Called(ctx, post)
	var created models.Post
	if val := args.Get(0); val != nil {
		created = val.(models.Post)
	}
	return created, args.Error(1)
}

func (m *PostRepositoryMock) UpdatePost(ctx context.Context, post models.Post) (models.Post, error) {
	args := m.Called(ctx, post)
	var updated models.Post
	if val := args.Get(0); val != nil {
		updated = val.(models.Post)
	}
	return updated, args.Error(1)
}

func (m *PostRepositoryMock) DeletePost(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *PostRepositoryMock) ToggleSave(ctx context.Context, userID, postID int) (bool, error) {
	args := m.Called(ctx, userID, postID)
	return args.Bool(0), args.Error(1)
}

func (m *PostRepositoryMock) IsSaved(ctx context.Context, userID, postID int) (bool, error) {
	args := m.Called(ctx, userID, postID)
	return args.Bool(0), args.Error(1)
}

func (m *PostRepositoryMock) SavedPostIDs(ctx context.Context, userID int) (map[int]bool, error) {
	args := m.Called(ctx, userID)
	var ids map[int]bool
	if val := args.Get(0); val != nil {
		ids = val.(map[int]bool)
	}
	return ids, args.Error(1)
}

func (m *PostRepositoryMock) ListUserPosts(ctx context.Context, userID int) ([]models.Post, error) {
	args := m.Called(ctx, userID)
	var posts []models.Post
	if val := args.Get(0); val != nil {
		posts = val.([]models.Post)
	}
	return posts, args.Error(1)
}

func (m *PostRepositoryMock) ListSavedPosts(ctx context.Context, userID int) ([]models.Post, error) {
	args := m.Called(ctx, userID)
	var posts []models.Post
	if val := args.Get(0); val != nil {
		posts = val.([]models.Post)
	}
	return posts, args.Error(1)
}

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) ListChats(ctx context.Context, userID, page, perPage int) ([]models.Chat, int, error) {
	args := m.Called(ctx, userID, page, perPage)
	var chats []models.Chat
	if val := args.Get(0); val != nil {
		chats = val.([]models.Chat)
	}
	return chats, args.Int(1), args.Error(2)
}

func (m *ChatRepositoryMock) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	args := m.Called(ctx, chatID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) FindChatBetween(ctx context.Context, userID, otherID int) (models.Chat, error) {
	args := m.Called(ctx, userID, otherID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) IsParticipant(ctx context.Context, chatID, userID int) (bool, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ChatRepositoryMock) MarkSeen(ctx context.Context, chatID, userID int) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

func (m *ChatRepositoryMock) HideChat(ctx context.Context, chatID, userID int) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

func (m *ChatRepositoryMock) CountUnseen(ctx context.Context, userID int) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, chat models.Chat, userID, page int) ([]models.Message, int, error) {
	args := m.Called(ctx, chat, userID, page)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Int(1), args.Error(2)
}

func (m *MessageRepositoryMock) SendMessage(ctx context.Context, chatID, senderID, receiverID int, text string) (models.Message, models.Chat, error) {
	args := m.Called(ctx, chatID, senderID, receiverID, text)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	var chat models.Chat
	if val := args.Get(1); val != nil {
		chat = val.(models.Chat)
	}
	return msg, chat, args.Error(2)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) UpdateMessage(ctx context.Context, messageID int, markDeleted bool, newText *string) (models.Message, error) {
	args := m.Called(ctx, messageID, markDeleted, newText)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) UpdateLastMessage(ctx context.Context, chatID int, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.PostRepository = (*PostRepositoryMock)(nil)
var _ repositories.ChatRepository = (*ChatRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
