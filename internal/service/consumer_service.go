package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"insightops-be/internal/dto"
	"insightops-be/internal/repository/specification"
	"insightops-be/internal/repository/unitofwork"
	"insightops-be/pkg/embedding"
	"insightops-be/pkg/events"
	"insightops-be/pkg/rag/response"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService is the embedding worker. It drains the embed topic,
// generates a vector per document and writes it back.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	answerCache       response.CacheStore
	eventPublisher    IEventPublisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	answerCache response.CacheStore,
	eventPublisher IEventPublisher,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		answerCache:       answerCache,
		eventPublisher:    eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	for msg := range messages {
		cs.processMessage(ctx, msg)
	}

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedDocumentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing embedding for DocumentId: %s", payload.DocumentId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		log.Printf("[ERROR] Failed to get document %s: %v", payload.DocumentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if doc == nil {
		log.Printf("[ERROR] Document not found: %s", payload.DocumentId)
		msg.Ack() // Document deleted? Ack.
		return
	}

	content := fmt.Sprintf("Document Title: %s\nDocument Type: %s\n\n%s",
		doc.Title, doc.Type, doc.Content)

	res, err := cs.embeddingProvider.Generate(ctx, content, "retrieval_document")
	if err != nil {
		log.Printf("[ERROR] Failed to generate embedding for document %s: %v", payload.DocumentId, err)
		msg.Nack()
		return
	}

	if err := uow.DocumentRepository().UpdateEmbedding(ctx, doc.Id, res.Embedding.Values); err != nil {
		log.Printf("[ERROR] Failed to store embedding for document %s: %v", payload.DocumentId, err)
		msg.Nack()
		return
	}

	// Cached answers predate the new embedding.
	cs.answerCache.InvalidateWorkspace(ctx, doc.WorkspaceId)

	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "DOCUMENT_EMBEDDED",
			Data: map[string]interface{}{
				"document_id":  doc.Id,
				"workspace_id": doc.WorkspaceId,
				"dimensions":   len(res.Embedding.Values),
			},
			OccurredAt: time.Now(),
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish DOCUMENT_EMBEDDED event: %v", err)
		}
	}

	log.Printf("[SUCCESS] Document embedded: %s (%d dims)", doc.Id, len(res.Embedding.Values))
	msg.Ack()
}
