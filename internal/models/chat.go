package models

import (
	"time"

	"github.com/lib/pq"
)

// Chat is a conversation between exactly two users. The creator holds the
// sender role (user1), the other participant the receiver role (user2); each
// side owns an independent hide timestamp bounding its visible messages.
type Chat struct {
	ID                 int           `db:"id" json:"id"`
	User1ID            int           `db:"user1_id" json:"-"`
	User2ID            int           `db:"user2_id" json:"-"`
	UserIDs            []int         `db:"-" json:"userIDs"`
	CreatedBy          int           `db:"-" json:"createdBy"`
	LastMessage        string        `db:"last_message" json:"lastMessage"`
	SenderHiddenFrom   *time.Time    `db:"user1_hidden_at" json:"senderHiddenFrom,omitempty"`
	ReceiverHiddenFrom *time.Time    `db:"user2_hidden_at" json:"receiverHiddenFrom,omitempty"`
	SeenBy             pq.Int64Array `db:"seen_by" json:"seenBy"`
	CreatedAt          time.Time     `db:"created_at" json:"createdAt"`

	Receiver *UserSummary `db:"-" json:"receiver,omitempty"`
}

// Normalize fills the derived fields after a database scan.
func (c *Chat) Normalize() {
	c.UserIDs = []int{c.User1ID, c.User2ID}
	c.CreatedBy = c.User1ID
	if c.SeenBy == nil {
		c.SeenBy = pq.Int64Array{}
	}
}

// HasParticipant reports whether the user belongs to the chat.
func (c Chat) HasParticipant(userID int) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherParticipant returns the participant that is not the given user.
func (c Chat) OtherParticipant(userID int) int {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// HiddenFor returns the visibility lower bound for the user's role, nil when
// the user never hid the chat.
func (c Chat) HiddenFor(userID int) *time.Time {
	if userID == c.User1ID {
		return c.SenderHiddenFrom
	}
	return c.ReceiverHiddenFrom
}

// SeenByUser reports whether the user is in the seen set.
func (c Chat) SeenByUser(userID int) bool {
	for _, id := range c.SeenBy {
		if int(id) == userID {
			return true
		}
	}
	return false
}
