package models

import "time"

// Message represents a chat message. Messages are never hard-deleted; unsend
// flips IsDeleted and edits flip IsUpdated.
type Message struct {
	ID        int       `db:"id" json:"id"`
	ChatID    int       `db:"chat_id" json:"chatId"`
	UserID    int       `db:"user_id" json:"userId"`
	Text      string    `db:"text" json:"text"`
	IsDeleted bool      `db:"is_deleted" json:"isDeleted"`
	IsUpdated bool      `db:"is_updated" json:"isUpdated"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ChatEvent is broadcasted through websockets.
type ChatEvent struct {
	Type      string   `json:"type"`
	Message   *Message `json:"message,omitempty"`
	MessageID int      `json:"messageId,omitempty"`
}
