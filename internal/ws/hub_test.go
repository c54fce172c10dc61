package ws

import (
	"testing"
	"time"
)

func TestHubAddAndRemoveChatClient(t *testing.T) {
	hub := NewHub()
	info := ConnInfo{ConnID: "abc", UserID: 1, ConnectedAt: time.Now()}

	hub.AddChatClient(1, nil, info)
	if len(hub.rooms) != 1 {
		t.Fatalf("expected chat room to be created")
	}
	if got, ok := hub.getConnInfo(1, nil); !ok || got.ConnID != "abc" {
		t.Fatalf("expected conn info to be tracked")
	}

	hub.RemoveChatClient(1, nil)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected chat room to be removed")
	}
	if _, ok := hub.getConnInfo(1, nil); ok {
		t.Fatalf("expected conn info to be dropped")
	}
}

func TestHubRemoveUnknownClient(t *testing.T) {
	hub := NewHub()

	// removing from an empty hub must not panic
	hub.RemoveChatClient(42, nil)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected no rooms")
	}
}
