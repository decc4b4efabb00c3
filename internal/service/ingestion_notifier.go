package service

import (
	"context"
	"time"

	"clinidoc-be/internal/entity"
	"clinidoc-be/internal/pkg/logger"
	"clinidoc-be/internal/websocket"
	"clinidoc-be/pkg/events"
	pktNats "clinidoc-be/pkg/nats"
)

// IngestionNotifier fans pipeline job updates out to the websocket hub
// (live progress frames) and the NATS bus (lifecycle events). Either sink
// may be nil; local runs work without NATS.
type IngestionNotifier struct {
	hub       *websocket.Hub
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

func NewIngestionNotifier(hub *websocket.Hub, publisher *pktNats.Publisher, log logger.ILogger) *IngestionNotifier {
	return &IngestionNotifier{
		hub:       hub,
		publisher: publisher,
		logger:    log,
	}
}

func (n *IngestionNotifier) JobUpdated(job entity.IngestionJob) {
	if n.hub != nil {
		n.hub.PublishProgress(statusFromJob(&job))
	}

	if n.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := n.publisher.Publish(ctx, events.NewIngestionEvent(job)); err != nil {
			n.logger.Warn("IngestionNotifier", "Failed to publish lifecycle event", map[string]interface{}{
				"job_id": job.Id, "error": err.Error(),
			})
		}
	}
}
