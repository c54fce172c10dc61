package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"estate-service/internal/models"
	"estate-service/internal/observability"
)

const chatRoutingKey = "ws_events.chats"

// Hub maintains active websocket rooms, one per chat.
type Hub struct {
	rooms    map[int]map[*websocket.Conn]bool
	connInfo map[int]map[*websocket.Conn]ConnInfo
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[int]map[*websocket.Conn]bool),
		connInfo: make(map[int]map[*websocket.Conn]ConnInfo),
	}
}

// AddChatClient registers a websocket connection to a chat room.
func (h *Hub) AddChatClient(chatID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[chatID]; !ok {
		h.rooms[chatID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[chatID][conn] = true
	if _, ok := h.connInfo[chatID]; !ok {
		h.connInfo[chatID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[chatID][conn] = info
}

// RemoveChatClient removes a chat websocket connection.
func (h *Hub) RemoveChatClient(chatID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[chatID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, chatID)
		}
	}
	if infos, ok := h.connInfo[chatID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, chatID)
		}
	}
}

// BroadcastMessage sends a new message to all clients in a chat.
func (h *Hub) BroadcastMessage(chatID int, msg models.Message) {
	h.broadcast(chatID, models.ChatEvent{Type: "message", Message: &msg})
}

// BroadcastMessageUpdate notifies clients of an edit or unsend.
func (h *Hub) BroadcastMessageUpdate(chatID int, msg models.Message) {
	h.broadcast(chatID, models.ChatEvent{Type: "message_updated", Message: &msg, MessageID: msg.ID})
}

func (h *Hub) broadcast(chatID int, event models.ChatEvent) {
	h.mu.RLock()
	conns := h.rooms[chatID]
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveChatClient(chatID, conn)
			h.publishWSError(chatID, conn, err)
		}
	}
}

func (h *Hub) publishWSError(chatID int, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(chatID, conn)
	if !ok {
		return
	}

	payload := wsEventPayload(chatID, info, "ws_error", time.Since(info.ConnectedAt).Milliseconds(), err.Error())
	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), chatRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent("chat", "ws_error")
}

func (h *Hub) getConnInfo(chatID int, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.connInfo[chatID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}
