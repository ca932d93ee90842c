package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalog-assist-be/internal/dto"
	"catalog-assist-be/internal/entity"
	"catalog-assist-be/internal/pkg/logger"
	"catalog-assist-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

type IAuditConsumerService interface {
	Consume(ctx context.Context) error
}

// auditConsumerService drains the in-process audit bus and writes the
// request/response trail to Postgres.
type auditConsumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewAuditConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IAuditConsumerService {
	return &auditConsumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (cs *auditConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

var (
	requestLine  = color.New(color.FgCyan).SprintfFunc()
	responseLine = color.New(color.FgGreen).SprintfFunc()
)

func (cs *auditConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.AuditEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		// Ack malformed messages, redelivery cannot fix them.
		cs.logger.Error("audit", "failed to unmarshal audit message", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	requestId, err := uuid.Parse(payload.RequestId)
	if err != nil {
		requestId = uuid.New()
	}

	var userId *uuid.UUID
	if payload.UserId != "" {
		if parsed, err := uuid.Parse(payload.UserId); err == nil {
			userId = &parsed
		}
	}

	req := &entity.ChatRequest{
		Id:        requestId,
		SessionId: payload.SessionId,
		UserId:    userId,
		Message:   payload.Message,
		State:     payload.State,
		CreatedAt: time.Now(),
	}
	resp := &entity.ChatResponse{
		Id:        uuid.New(),
		RequestId: requestId,
		SessionId: payload.SessionId,
		Kind:      payload.Kind,
		Payload:   payload.Payload,
		CreatedAt: time.Now(),
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		cs.logger.Error("audit", "failed to start audit transaction", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.AuditRepository().SaveRequest(ctx, req); err != nil {
		cs.logger.Error("audit", "failed to save chat request", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}
	if err := uow.AuditRepository().SaveResponse(ctx, resp); err != nil {
		cs.logger.Error("audit", "failed to save chat response", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}
	if err := uow.Commit(); err != nil {
		cs.logger.Error("audit", "failed to commit audit transaction", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	fmt.Println(requestLine("[%s] %s >> %s", payload.SessionId, payload.State, payload.Message))
	fmt.Println(responseLine("[%s] %s << %s", payload.SessionId, payload.Kind, summarize(payload)))

	msg.Ack()
}

func summarize(p dto.AuditEventMessage) string {
	if q, ok := p.Payload["question"].(string); ok && q != "" {
		return q
	}
	if t, ok := p.Payload["text"].(string); ok && t != "" {
		return t
	}
	return p.Kind
}
