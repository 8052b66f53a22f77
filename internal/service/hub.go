package service

import (
	"context"
	log "log/slog"
	"sync"
)

// Subscriber 一个已加入房间的连接
type Subscriber interface {
	// Enqueue 非阻塞写入发送队列，队列满时返回 false
	Enqueue(frame []byte) bool
}

// Hub 房间注册表，房间以用户数字 id 为键
type Hub struct {
	mu     sync.RWMutex
	rooms  map[uint64]map[Subscriber]struct{}
	broker Broker
}

func NewHub(broker Broker) *Hub {
	return &Hub{
		rooms:  make(map[uint64]map[Subscriber]struct{}),
		broker: broker,
	}
}

func (h *Hub) Join(roomID uint64, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[roomID]
	if !ok {
		room = make(map[Subscriber]struct{})
		h.rooms[roomID] = room
	}
	room[sub] = struct{}{}
}

func (h *Hub) Leave(roomID uint64, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(room, sub)
	if len(room) == 0 {
		delete(h.rooms, roomID)
	}
}

func (h *Hub) RoomSize(roomID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Publish 经 broker 发往房间，可能落在其他实例
func (h *Hub) Publish(ctx context.Context, roomID uint64, frame []byte) error {
	return h.broker.Publish(ctx, roomID, frame)
}

// Deliver 投递给本实例的房间成员
func (h *Hub) Deliver(roomID uint64, frame []byte) {
	h.mu.RLock()
	subs := make([]Subscriber, 0, len(h.rooms[roomID]))
	for sub := range h.rooms[roomID] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		if !sub.Enqueue(frame) {
			log.Warn("drop frame for slow subscriber", "room", roomID)
		}
	}
}

// Run 阻塞消费 broker
func (h *Hub) Run(ctx context.Context) error {
	return h.broker.Run(ctx, h.Deliver)
}
