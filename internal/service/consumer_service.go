package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"clinidoc-be/internal/dto"
	"clinidoc-be/internal/repository/specification"
	"clinidoc-be/internal/repository/unitofwork"
	"clinidoc-be/pkg/lease"
	"clinidoc-be/pkg/pipeline"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	runner     *pipeline.Runner
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	runner *pipeline.Runner,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		runner:     runner,
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
	var payload dto.PublishIngestDocumentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Running ingestion job %s for document %s", payload.JobId, payload.DocumentId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	job, err := uow.IngestionJobRepository().FindOne(ctx, specification.ByID{ID: payload.JobId})
	if err != nil {
		log.Printf("[ERROR] Failed to load job %s: %v", payload.JobId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if job == nil {
		log.Printf("[ERROR] Job not found: %s", payload.JobId)
		msg.Ack()
		return
	}
	if job.State.Terminal() {
		log.Printf("[INFO] Job %s already terminal (%s), skipping", job.Id, job.State)
		msg.Ack()
		return
	}

	data, err := uow.DocumentRepository().Payload(ctx, payload.DocumentId)
	if err != nil {
		log.Printf("[ERROR] Failed to load document payload %s: %v", payload.DocumentId, err)
		msg.Nack()
		return
	}

	if err := cs.runner.Run(ctx, job, data); err != nil {
		if errors.Is(err, lease.ErrConflict) {
			// Another instance already holds this job. Not ours to retry.
			log.Printf("[INFO] Job %s leased elsewhere, dropping message", job.Id)
			msg.Ack()
			return
		}
		// The runner has already persisted the failed state; resuming is an
		// operator decision, not a redelivery.
		log.Printf("[ERROR] Job %s failed: %v", job.Id, err)
		msg.Ack()
		return
	}

	log.Printf("[SUCCESS] Job %s finished in state %s", job.Id, job.State)
	msg.Ack()
}
