package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"scentence-be/internal/constant"
	"scentence-be/internal/dto"
	"scentence-be/internal/entity"
	"scentence-be/internal/pkg/logger"
	"scentence-be/internal/pkg/serverutils"
	"scentence-be/internal/repository/memory"
	"scentence-be/internal/repository/specification"
	"scentence-be/internal/repository/unitofwork"
	"scentence-be/pkg/dialog"
	"scentence-be/pkg/dialog/runtime"
	"scentence-be/pkg/events"
	pkgNats "scentence-be/pkg/nats"
	"scentence-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type StreamEmitter func(event dto.StreamEvent)

type IChatService interface {
	CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
	GetSessionUsage(ctx context.Context, sessionId uuid.UUID) (*dto.GetSessionUsageResponse, error)
	StreamChat(ctx context.Context, req *dto.SendChatRequest, emit StreamEmitter) error
}

// chatService hosts the conversation pipeline: it owns session persistence,
// per-session turn serialization and the streaming surface, and delegates
// the actual thinking to the turn runtime.
type chatService struct {
	uowFactory       unitofwork.RepositoryFactory
	stateRepo        *memory.StateRepository
	turnRuntime      *runtime.Runtime
	publisherService IPublisherService
	natsPub          *pkgNats.Publisher
	sysLogger        logger.ILogger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	stateRepo *memory.StateRepository,
	turnRuntime *runtime.Runtime,
	publisherService IPublisherService,
	natsPub *pkgNats.Publisher,
	sysLogger logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:       uowFactory,
		stateRepo:        stateRepo,
		turnRuntime:      turnRuntime,
		publisherService: publisherService,
		natsPub:          natsPub,
		sysLogger:        sysLogger,
		locks:            make(map[uuid.UUID]*sync.Mutex),
	}
}

// sessionLock returns the mutex serializing turns of one session.
func (c *chatService) sessionLock(sessionId uuid.UUID) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[sessionId]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[sessionId] = lock
	}
	return lock
}

func (c *chatService) CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "New conversation"
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	session := &entity.ChatSession{Title: title}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}
	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

func (c *chatService) GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetAllSessionsResponse, len(sessions))
	for i, s := range sessions {
		res[i] = &dto.GetAllSessionsResponse{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		}
	}
	return res, nil
}

func (c *chatService) GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetChatHistoryResponse, len(messages))
	for i, m := range messages {
		item := &dto.GetChatHistoryResponse{
			Id:        m.Id,
			Role:      m.Role,
			Chat:      m.Chat,
			CreatedAt: m.CreatedAt,
		}
		if m.Meta != nil {
			item.Meta = &dto.TurnMetaDTO{
				Route:        m.Meta.Route,
				RetryCount:   m.Meta.RetryCount,
				InputTokens:  m.Meta.InputTokens,
				OutputTokens: m.Meta.OutputTokens,
			}
		}
		res[i] = item
	}
	return res, nil
}

func (c *chatService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatMessageRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}
	c.stateRepo.Delete(sessionId.String())
	return nil
}

func (c *chatService) GetSessionUsage(ctx context.Context, sessionId uuid.UUID) (*dto.GetSessionUsageResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	totals, err := uow.TokenUsageRepository().SumBySessionId(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return &dto.GetSessionUsageResponse{
		ChatSessionId: sessionId,
		InputTokens:   totals.InputTokens,
		OutputTokens:  totals.OutputTokens,
	}, nil
}

func (c *chatService) StreamChat(ctx context.Context, req *dto.SendChatRequest, emit StreamEmitter) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: req.ChatSessionId})
	if err != nil {
		return err
	}
	if session == nil {
		return serverutils.NewHttpError(fiber.StatusNotFound, "chat session not found")
	}

	// One turn at a time per session; concurrent sends queue up here
	lock := c.sessionLock(req.ChatSessionId)
	lock.Lock()
	defer lock.Unlock()

	state, found := c.stateRepo.Get(req.ChatSessionId.String())
	if !found {
		state = store.NewConversationState(req.ChatSessionId.String())
	}
	state.UserQuery = req.Chat

	if err := c.persistMessage(ctx, req.ChatSessionId, constant.ChatMessageRoleUser, req.Chat, nil); err != nil {
		return err
	}

	inBefore, outBefore := state.InputTokens, state.OutputTokens

	sink := func(event string, content string) {
		ev := dto.StreamEvent{Type: event, Content: content}
		if event == dialog.EventAnswer {
			ev.Usage = &dto.TurnUsageDTO{
				InputTokens:  state.InputTokens - inBefore,
				OutputTokens: state.OutputTokens - outBefore,
			}
		}
		emit(ev)
	}

	if err := c.turnRuntime.ProcessTurn(ctx, state, sink); err != nil {
		c.sysLogger.Error("chat", "turn processing failed", map[string]interface{}{
			"error":      err.Error(),
			"session_id": req.ChatSessionId,
		})
		return err
	}

	c.stateRepo.Save(state)

	meta := &entity.TurnMeta{
		Route:        state.LastRoute,
		RetryCount:   state.RetryCount,
		InputTokens:  state.InputTokens - inBefore,
		OutputTokens: state.OutputTokens - outBefore,
	}
	if err := c.persistMessage(ctx, req.ChatSessionId, constant.ChatMessageRoleModel, state.FinalResponse, meta); err != nil {
		c.sysLogger.Error("chat", "failed to persist reply", map[string]interface{}{
			"error":      err.Error(),
			"session_id": req.ChatSessionId,
		})
	}

	c.maybeTitleSession(ctx, session, req.Chat)
	c.publishUsage(ctx, req.ChatSessionId, state.LastRoute, meta.InputTokens, meta.OutputTokens)

	if c.natsPub != nil {
		event := events.NewTurnCompleted(
			req.ChatSessionId.String(),
			state.LastRoute,
			meta.InputTokens,
			meta.OutputTokens,
			state.RetryCount,
		)
		if err := c.natsPub.Publish(ctx, event); err != nil {
			c.sysLogger.Warn("chat", "failed to publish turn event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return nil
}

func (c *chatService) persistMessage(ctx context.Context, sessionId uuid.UUID, role, chat string, meta *entity.TurnMeta) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	msg := &entity.ChatMessage{
		Chat:          chat,
		Role:          role,
		ChatSessionId: sessionId,
		Meta:          meta,
	}
	return uow.ChatMessageRepository().Create(ctx, msg)
}

// maybeTitleSession names a fresh session after its first user message.
func (c *chatService) maybeTitleSession(ctx context.Context, session *entity.ChatSession, firstChat string) {
	if session.Title != "New conversation" {
		return
	}
	title := strings.TrimSpace(firstChat)
	if len(title) > 60 {
		title = title[:60] + "..."
	}
	if title == "" {
		return
	}

	session.Title = title
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		c.sysLogger.Warn("chat", "failed to title session", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (c *chatService) publishUsage(ctx context.Context, sessionId uuid.UUID, route string, inTokens, outTokens int) {
	payload := dto.PublishTurnUsageMessage{
		ChatSessionId: sessionId,
		Route:         route,
		InputTokens:   inTokens,
		OutputTokens:  outTokens,
	}
	payloadJson, _ := json.Marshal(payload)
	if err := c.publisherService.Publish(ctx, payloadJson); err != nil {
		c.sysLogger.Warn("chat", "failed to publish usage event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
