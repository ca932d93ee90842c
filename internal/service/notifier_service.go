package service

import (
	"context"

	"catalog-assist-be/internal/pkg/logger"
	"catalog-assist-be/internal/websocket"
	"catalog-assist-be/pkg/events"
	pktNats "catalog-assist-be/pkg/nats"
)

type INotifierService interface {
	Start() error
}

// notifierService bridges the NATS event stream to the websocket hub so
// session watchers get pushed when a conversation lands on a product.
type notifierService struct {
	subscriber *pktNats.Subscriber
	hub        *websocket.Hub
	logger     logger.ILogger
}

func NewNotifierService(subscriber *pktNats.Subscriber, hub *websocket.Hub, log logger.ILogger) INotifierService {
	return &notifierService{
		subscriber: subscriber,
		hub:        hub,
		logger:     log,
	}
}

func (s *notifierService) Start() error {
	return s.subscriber.Subscribe(
		"events."+events.TypeConversationCompleted,
		"notifier-conversation-completed",
		s.handleConversationCompleted,
	)
}

func (s *notifierService) handleConversationCompleted(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	sessionID, _ := payload["session_id"].(string)
	if sessionID == "" {
		s.logger.Warn("notifier", "conversation event without session id", payload)
		return nil
	}

	s.hub.Send(sessionID, events.TypeConversationCompleted, payload)
	return nil
}
