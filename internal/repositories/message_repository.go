package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"estate-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

const messageColumns = `id, chat_id, user_id, text, is_deleted, is_updated, created_at`

// MessagePageSize is the fixed page size for message history.
const MessagePageSize = 20

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	ListMessages(ctx context.Context, chat models.Chat, userID, page int) ([]models.Message, int, error)
	SendMessage(ctx context.Context, chatID, senderID, receiverID int, text string) (models.Message, models.Chat, error)
	GetMessage(ctx context.Context, messageID int) (models.Message, error)
	UpdateMessage(ctx context.Context, messageID int, markDeleted bool, newText *string) (models.Message, error)
	UpdateLastMessage(ctx context.Context, chatID int, text string) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// ListMessages returns a page of the chat's messages newest first, bounded
// below by the caller's visibility window, plus the total under that bound.
func (r *MessageRepo) ListMessages(ctx context.Context, chat models.Chat, userID, page int) ([]models.Message, int, error) {
	hiddenFrom := chat.HiddenFor(userID)
	skip := (page - 1) * MessagePageSize
	if skip < 0 {
		skip = 0
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var total int
	err = tx.GetContext(ctx, &total, `SELECT COUNT(*) FROM messages
        WHERE chat_id=$1 AND ($2::timestamptz IS NULL OR created_at >= $2)`, chat.ID, hiddenFrom)
	if err != nil {
		return nil, 0, err
	}

	var msgs []models.Message
	err = tx.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages
        WHERE chat_id=$1 AND ($2::timestamptz IS NULL OR created_at >= $2)
        ORDER BY created_at DESC LIMIT $3 OFFSET $4`, chat.ID, hiddenFrom, MessagePageSize, skip)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

// SendMessage stores a message and updates the parent chat in a single
// transaction: the chat is created on demand for chatID 0 (an upsert on the
// unordered participant pair), last_message is refreshed, the seen set
// collapses to just the sender and the other participant's hide marker is
// cleared so the resumed conversation becomes visible to them again.
func (r *MessageRepo) SendMessage(ctx context.Context, chatID, senderID, receiverID int, text string) (models.Message, models.Chat, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, models.Chat{}, err
	}
	defer tx.Rollback()

	var chat models.Chat
	if chatID == 0 {
		chat, err = getOrCreateChat(ctx, tx, senderID, receiverID)
	} else {
		err = tx.GetContext(ctx, &chat, `SELECT id, user1_id, user2_id, last_message, user1_hidden_at, user2_hidden_at, created_at
            FROM chats WHERE id=$1`, chatID)
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrChatNotFound
		}
	}
	if err != nil {
		return models.Message{}, models.Chat{}, err
	}
	if !chat.HasParticipant(senderID) {
		return models.Message{}, models.Chat{}, ErrChatNotFound
	}

	var msg models.Message
	err = tx.GetContext(ctx, &msg, `INSERT INTO messages (chat_id, user_id, text)
        VALUES ($1, $2, $3) RETURNING `+messageColumns, chat.ID, senderID, text)
	if err != nil {
		return models.Message{}, models.Chat{}, err
	}

	// Clear the non-sender's hide marker; their earlier hide must not bury
	// the resumed conversation.
	otherID := chat.OtherParticipant(senderID)
	_, err = tx.ExecContext(ctx, `UPDATE chats SET
            last_message=$2,
            user1_hidden_at = CASE WHEN user1_id=$3 THEN NULL ELSE user1_hidden_at END,
            user2_hidden_at = CASE WHEN user2_id=$3 THEN NULL ELSE user2_hidden_at END
        WHERE id=$1`, chat.ID, text, otherID)
	if err != nil {
		return models.Message{}, models.Chat{}, err
	}

	// Seen set becomes exactly {sender}.
	if _, err = tx.ExecContext(ctx, `DELETE FROM chat_seen WHERE chat_id=$1`, chat.ID); err != nil {
		return models.Message{}, models.Chat{}, err
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO chat_seen (chat_id, user_id) VALUES ($1, $2)`, chat.ID, senderID); err != nil {
		return models.Message{}, models.Chat{}, err
	}

	var updated models.Chat
	err = tx.GetContext(ctx, &updated, `SELECT `+chatColumns+` FROM chats c WHERE c.id=$1`, chat.ID)
	if err != nil {
		return models.Message{}, models.Chat{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Message{}, models.Chat{}, err
	}
	updated.Normalize()
	return msg, updated, nil
}

// getOrCreateChat upserts the chat for the unordered pair. The unique index
// over (LEAST, GREATEST) of the participant ids makes concurrent creations
// converge on one row.
func getOrCreateChat(ctx context.Context, tx *sqlx.Tx, senderID, receiverID int) (models.Chat, error) {
	var chat models.Chat
	err := tx.GetContext(ctx, &chat, `INSERT INTO chats (user1_id, user2_id) VALUES ($1, $2)
        ON CONFLICT ((LEAST(user1_id, user2_id)), (GREATEST(user1_id, user2_id))) DO NOTHING
        RETURNING id, user1_id, user2_id, last_message, user1_hidden_at, user2_hidden_at, created_at`,
		senderID, receiverID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, err
	}

	err = tx.GetContext(ctx, &chat, `SELECT id, user1_id, user2_id, last_message, user1_hidden_at, user2_hidden_at, created_at
        FROM chats WHERE (user1_id=$1 AND user2_id=$2) OR (user1_id=$2 AND user2_id=$1)`, senderID, receiverID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// UpdateMessage applies an unsend and/or a text edit to the author's message.
func (r *MessageRepo) UpdateMessage(ctx context.Context, messageID int, markDeleted bool, newText *string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `UPDATE messages SET
            is_deleted = is_deleted OR $2,
            text = COALESCE($3, text),
            is_updated = is_updated OR ($3 IS NOT NULL)
        WHERE id=$1 RETURNING `+messageColumns, messageID, markDeleted, newText)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// UpdateLastMessage replaces the chat's denormalized preview text.
func (r *MessageRepo) UpdateLastMessage(ctx context.Context, chatID int, text string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE chats SET last_message=$2 WHERE id=$1`, chatID, text)
	return err
}
