package ws

import (
	"github.com/ignatzorin/tutoring-backend/internal/logger"
	"github.com/ignatzorin/tutoring-backend/internal/models"
)

// Имена событий, уходящих клиентам.
const (
	EventRoomCreated   = "room.created"
	EventRoomStatus    = "room.status_changed"
	EventMessageCreate = "message.created"
)

// EventNotifier транслирует события движка участникам комнаты через
// хаб. Реализует интерфейсы нотификаторов сервисного слоя.
type EventNotifier struct {
	hub *Hub
}

// NewEventNotifier создаёт нотификатор поверх хаба.
func NewEventNotifier(hub *Hub) *EventNotifier {
	return &EventNotifier{hub: hub}
}

// NotifyRoomCreated сообщает обоим участникам о новой комнате.
func (n *EventNotifier) NotifyRoomCreated(room *models.Room) {
	n.toParticipants(room, EventRoomCreated, room)
}

// NotifyRoomStatus сообщает участникам о смене статуса комнаты.
func (n *EventNotifier) NotifyRoomStatus(room *models.Room) {
	n.toParticipants(room, EventRoomStatus, room)
}

// NotifyMessage сообщает участникам о новом сообщении.
func (n *EventNotifier) NotifyMessage(room *models.Room, msg *models.Message) {
	n.toParticipants(room, EventMessageCreate, msg)
}

func (n *EventNotifier) toParticipants(room *models.Room, event string, data any) {
	if err := n.hub.BroadcastToUser(room.StudentID, event, data); err != nil {
		logger.Log.WithError(err).Warn("ws: не удалось отправить событие студенту")
	}
	if err := n.hub.BroadcastToUser(room.TutorID, event, data); err != nil {
		logger.Log.WithError(err).Warn("ws: не удалось отправить событие репетитору")
	}
}
