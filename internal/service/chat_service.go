package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"catalog-assist-be/internal/dto"
	"catalog-assist-be/internal/pkg/logger"
	"catalog-assist-be/internal/repository/memory"
	"catalog-assist-be/pkg/dialog"
	"catalog-assist-be/pkg/events"
	"catalog-assist-be/pkg/intent"
	pktNats "catalog-assist-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IChatService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	SendMessage(ctx context.Context, userId string, req *dto.ChatMessageRequest) (*dto.ChatMessageResponse, error)
	SelectOption(ctx context.Context, userId string, req *dto.SelectOptionRequest) (*dto.ChatMessageResponse, error)
	Analyze(ctx context.Context, req *dto.AnalyzeRequest) (*dto.AnalyzeResponse, error)
	Restart(ctx context.Context, req *dto.RestartRequest) (*dto.ChatMessageResponse, error)
	Transcript(ctx context.Context, sessionId string) (*dto.TranscriptResponse, error)
}

type chatService struct {
	machine        *dialog.Machine
	sessions       *memory.SessionRepository
	extractor      *intent.Extractor
	auditBus       *gochannel.GoChannel
	auditTopic     string
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewChatService(
	machine *dialog.Machine,
	sessions *memory.SessionRepository,
	extractor *intent.Extractor,
	auditBus *gochannel.GoChannel,
	auditTopic string,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		machine:        machine,
		sessions:       sessions,
		extractor:      extractor,
		auditBus:       auditBus,
		auditTopic:     auditTopic,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *chatService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	session := s.machine.NewSession(uuid.New().String())

	// An empty first turn yields the greeting without touching memory.
	reply, err := s.machine.HandleMessage(ctx, session, "")
	if err != nil {
		return nil, err
	}
	s.sessions.Save(session)

	return &dto.CreateSessionResponse{SessionId: session.ID, Greeting: reply.Text}, nil
}

func (s *chatService) SelectOption(ctx context.Context, userId string, req *dto.SelectOptionRequest) (*dto.ChatMessageResponse, error) {
	session, found := s.sessions.Get(req.SessionId)
	if !found {
		return nil, errors.New("session not found")
	}
	pending := session.OptionCount()
	if pending == 0 {
		return nil, errors.New("no options pending for this session")
	}
	if req.Option > pending {
		return nil, errors.New("option out of range")
	}

	text := strconv.Itoa(req.Option)
	stateBefore := string(session.CurrentState())
	reply, err := s.machine.HandleMessage(ctx, session, text)
	if err != nil {
		return nil, err
	}
	s.sessions.Save(session)

	s.publishAudit(req.SessionId, userId, text, stateBefore, reply)

	return toChatResponse(req.SessionId, reply), nil
}

func (s *chatService) Analyze(ctx context.Context, req *dto.AnalyzeRequest) (*dto.AnalyzeResponse, error) {
	if s.extractor == nil {
		return nil, errors.New("intent extraction is not configured")
	}

	analysis, err := s.extractor.Extract(ctx, req.Message)
	if err != nil {
		return nil, err
	}

	return &dto.AnalyzeResponse{
		Category:    analysis.Category,
		Intention:   analysis.Intention,
		Include:     analysis.Include,
		Exclude:     analysis.Exclude,
		SearchQuery: analysis.SearchQuery(),
	}, nil
}

func (s *chatService) SendMessage(ctx context.Context, userId string, req *dto.ChatMessageRequest) (*dto.ChatMessageResponse, error) {
	sessionId := req.SessionId
	if sessionId == "" {
		sessionId = uuid.New().String()
	}

	session, found := s.sessions.Get(sessionId)
	if !found {
		session = s.machine.NewSession(sessionId)
	}

	text := req.Message
	state := session.CurrentState()
	if s.extractor != nil && (state == dialog.StateAskQuery || state == dialog.StateEnd) {
		// A fresh query goes through intent extraction first; a pick from
		// pending options must stay verbatim.
		analysis, err := s.extractor.Extract(ctx, req.Message)
		switch {
		case err == nil && analysis.SearchQuery() != "":
			text = analysis.SearchQuery()
		case errors.Is(err, intent.ErrMalformedOutput):
			s.logger.Warn("chat", "intent extraction unusable, using raw message", map[string]interface{}{
				"session_id": sessionId,
			})
		case err != nil:
			s.logger.Warn("chat", "intent extraction failed, using raw message", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
	}

	stateBefore := string(session.CurrentState())
	reply, err := s.machine.HandleMessage(ctx, session, text)
	if err != nil {
		return nil, err
	}
	s.sessions.Save(session)

	s.publishAudit(sessionId, userId, req.Message, stateBefore, reply)

	if reply.Kind == dialog.ReplyProduct && reply.Product != nil && s.eventPublisher != nil {
		event := events.NewConversationCompleted(sessionId, userId, reply.Product.Name, reply.Product.Article)
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("chat", "failed to publish conversation event", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
	}

	return toChatResponse(sessionId, reply), nil
}

func (s *chatService) Restart(ctx context.Context, req *dto.RestartRequest) (*dto.ChatMessageResponse, error) {
	session, found := s.sessions.Get(req.SessionId)
	if !found {
		session = s.machine.NewSession(req.SessionId)
	}

	reply := s.machine.Restart(session)
	s.sessions.Save(session)

	s.publishAudit(req.SessionId, "", "/restart", string(dialog.StateAskQuery), reply)

	return toChatResponse(req.SessionId, reply), nil
}

func (s *chatService) Transcript(ctx context.Context, sessionId string) (*dto.TranscriptResponse, error) {
	session, found := s.sessions.Get(sessionId)
	if !found {
		return nil, errors.New("session not found")
	}

	turns := session.Transcript()
	out := make([]dto.TranscriptDTO, len(turns))
	for i, t := range turns {
		out[i] = dto.TranscriptDTO{Role: t.Role, Text: t.Text, At: t.At}
	}
	return &dto.TranscriptResponse{SessionId: sessionId, Turns: out}, nil
}

// publishAudit puts the exchange on the in-process bus. Persistence
// happens in the consumer, off the request path.
func (s *chatService) publishAudit(sessionId, userId, userMessage, state string, reply dialog.Reply) {
	if s.auditBus == nil {
		return
	}

	payload := map[string]interface{}{
		"text":     reply.Text,
		"question": reply.Question,
		"options":  reply.Options,
	}
	if reply.Product != nil {
		payload["product"] = reply.Product
	}

	msg := dto.AuditEventMessage{
		RequestId: uuid.New().String(),
		SessionId: sessionId,
		UserId:    userId,
		Message:   userMessage,
		State:     state,
		Kind:      string(reply.Kind),
		Payload:   payload,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("chat", "failed to marshal audit message", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := s.auditBus.Publish(s.auditTopic, message.NewMessage(msg.RequestId, data)); err != nil {
		s.logger.Warn("chat", "failed to publish audit message", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

func toChatResponse(sessionId string, reply dialog.Reply) *dto.ChatMessageResponse {
	resp := &dto.ChatMessageResponse{
		SessionId: sessionId,
		Kind:      string(reply.Kind),
		Text:      reply.Text,
		Question:  reply.Question,
		Options:   reply.Options,
	}
	if reply.Product != nil {
		resp.Product = &dto.ProductCardDTO{
			Name:        reply.Product.Name,
			Description: reply.Product.Description,
			Article:     reply.Product.Article,
			Brand:       reply.Product.Brand,
			Country:     reply.Product.Country,
			PhotoURL:    reply.Product.PhotoURL,
		}
	}
	return resp
}
