package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"estate-service/internal/models"
)

var ErrChatNotFound = errors.New("chat not found")

// chatColumns selects a chat row along with its seen set aggregated from
// chat_seen.
const chatColumns = `c.id, c.user1_id, c.user2_id, c.last_message, c.user1_hidden_at, c.user2_hidden_at, c.created_at,
        ARRAY(SELECT cs.user_id FROM chat_seen cs WHERE cs.chat_id = c.id ORDER BY cs.user_id) AS seen_by`

// ChatRepository abstracts chat persistence.
type ChatRepository interface {
	ListChats(ctx context.Context, userID, page, perPage int) ([]models.Chat, int, error)
	GetChat(ctx context.Context, chatID int) (models.Chat, error)
	FindChatBetween(ctx context.Context, userID, otherID int) (models.Chat, error)
	IsParticipant(ctx context.Context, chatID, userID int) (bool, error)
	MarkSeen(ctx context.Context, chatID, userID int) error
	HideChat(ctx context.Context, chatID, userID int) error
	CountUnseen(ctx context.Context, userID int) (int, error)
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// ListChats returns the user's chats newest first along with the total count,
// both from the same snapshot.
func (r *ChatRepo) ListChats(ctx context.Context, userID, page, perPage int) ([]models.Chat, int, error) {
	skip := (page - 1) * perPage
	if skip < 0 {
		skip = 0
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var total int
	if err := tx.GetContext(ctx, &total, `SELECT COUNT(*) FROM chats WHERE user1_id=$1 OR user2_id=$1`, userID); err != nil {
		return nil, 0, err
	}

	var chats []models.Chat
	err = tx.SelectContext(ctx, &chats, `SELECT `+chatColumns+` FROM chats c
        WHERE c.user1_id=$1 OR c.user2_id=$1
        ORDER BY c.created_at DESC LIMIT $2 OFFSET $3`, userID, perPage, skip)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	for i := range chats {
		chats[i].Normalize()
	}
	return chats, total, nil
}

// GetChat fetches a chat by id.
func (r *ChatRepo) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT `+chatColumns+` FROM chats c WHERE c.id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	if err != nil {
		return models.Chat{}, err
	}
	chat.Normalize()
	return chat, nil
}

// FindChatBetween looks up the chat for the unordered participant pair.
func (r *ChatRepo) FindChatBetween(ctx context.Context, userID, otherID int) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT `+chatColumns+` FROM chats c
        WHERE (c.user1_id=$1 AND c.user2_id=$2) OR (c.user1_id=$2 AND c.user2_id=$1)`, userID, otherID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	if err != nil {
		return models.Chat{}, err
	}
	chat.Normalize()
	return chat, nil
}

// IsParticipant checks whether a user belongs to the chat.
func (r *ChatRepo) IsParticipant(ctx context.Context, chatID, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM chats WHERE id=$1 AND (user1_id=$2 OR user2_id=$2))`, chatID, userID)
	return exists, err
}

// MarkSeen adds the user to the chat's seen set. Repeated views are no-ops,
// the set never grows beyond the two participants.
func (r *ChatRepo) MarkSeen(ctx context.Context, chatID, userID int) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO chat_seen (chat_id, user_id) VALUES ($1, $2)
        ON CONFLICT (chat_id, user_id) DO NOTHING`, chatID, userID)
	return err
}

// HideChat stamps the caller's role side, hiding all messages created before
// this moment from the caller's message view. Nothing is deleted.
func (r *ChatRepo) HideChat(ctx context.Context, chatID, userID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE chats SET
            user1_hidden_at = CASE WHEN user1_id=$2 THEN NOW() ELSE user1_hidden_at END,
            user2_hidden_at = CASE WHEN user2_id=$2 THEN NOW() ELSE user2_hidden_at END
        WHERE id=$1 AND (user1_id=$2 OR user2_id=$2)`, chatID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrChatNotFound
	}
	return nil
}

// CountUnseen counts the user's chats missing from their seen set.
func (r *ChatRepo) CountUnseen(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM chats c
        WHERE (c.user1_id=$1 OR c.user2_id=$1)
        AND NOT EXISTS (SELECT 1 FROM chat_seen cs WHERE cs.chat_id = c.id AND cs.user_id=$1)`, userID)
	return count, err
}
