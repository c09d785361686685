package service

import (
	"context"
	"encoding/json"
	"log"

	"scentence-be/internal/dto"
	"scentence-be/internal/entity"
	"scentence-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains turn-usage events into the token_usages ledger so
// accounting never blocks the chat stream.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
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

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishTurnUsageMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal usage message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	usage := &entity.TokenUsage{
		ChatSessionId: payload.ChatSessionId,
		Route:         payload.Route,
		InputTokens:   payload.InputTokens,
		OutputTokens:  payload.OutputTokens,
	}
	if err := uow.TokenUsageRepository().Create(ctx, usage); err != nil {
		log.Printf("[ERROR] Failed to record usage for session %s: %v", payload.ChatSessionId, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	msg.Ack()
}
