package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/shiftboard-backend/internal/goroutine"
	"github.com/ignatzorin/shiftboard-backend/internal/logger"
)

// Hub управляет всеми WebSocket клиентами. Клиент адресуется по id пользователя
// и, для сотрудников, по id организации.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
}

type message struct {
	recipient uuid.UUID
	payload   []byte
}

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 64),
	}
}

// Run запускает главный цикл хаба до отмены контекста.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.recipient, msg.payload)
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Send отправляет событие получателю. Формат сообщения: {"type": ..., "data": ...}.
func (h *Hub) Send(recipient uuid.UUID, event string, data any) error {
	raw, err := json.Marshal(map[string]any{
		"type": event,
		"data": data,
	})
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}

	select {
	case h.broadcast <- message{recipient: recipient, payload: raw}:
	default:
		logger.Log.WithFields(logrus.Fields{
			"recipient": recipient,
			"event":     event,
		}).Warn("ws: очередь рассылки переполнена, сообщение отброшено")
	}
	return nil
}

// Connected возвращает число подключений получателя.
func (h *Hub) Connected(recipient uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[recipient])
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, key := range client.audience() {
		if _, ok := h.clients[key]; !ok {
			h.clients[key] = make(map[*Client]struct{})
		}
		h.clients[key][client] = struct{}{}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, key := range client.audience() {
		if clients, ok := h.clients[key]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.clients, key)
			}
		}
	}
}

func (h *Hub) send(recipient uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[recipient] {
		select {
		case client.send <- payload:
		default:
			c := client
			goroutine.SafeGo("ws-close-slow-client", c.Close)
		}
	}
}
