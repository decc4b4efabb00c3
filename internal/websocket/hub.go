package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"clinidoc-be/internal/dto"
	"clinidoc-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const progressChannel = "ingestion_progress_events"

// Hub fans ingestion progress frames out to every websocket watching a
// given job. A Redis channel relays frames between instances so a
// watcher can be connected to a different node than the pipeline runner.
type Hub struct {
	// Watchers map: JobID -> list of clients (multiple tabs allowed)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.JobID] = append(h.clients[client.JobID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Watcher registered", map[string]interface{}{"job_id": client.JobID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.JobID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.JobID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.JobID]) == 0 {
					delete(h.clients, client.JobID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// PublishProgress pushes a status frame to every watcher of the job,
// locally and via Redis for other instances.
func (h *Hub) PublishProgress(status *dto.IngestionStatusResponse) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "ingestion_progress",
		"data": status,
	})

	h.sendLocal(status.Id, data)

	if h.rdb != nil {
		payload := map[string]interface{}{
			"job_id":  status.Id.String(),
			"message": data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), progressChannel, jsonPayload)
	}
}

func (h *Hub) sendLocal(jobID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients, ok := h.clients[jobID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// Slow consumer. Only the unregister branch in Run may close
			// the Send channel; closing here too would close it twice.
			h.logger.Warn("Hub", "Watcher send buffer full, dropping connection", map[string]interface{}{"job_id": jobID})
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the shared channel and delivers to
	// the jobs it has watchers for.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, progressChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			JobID   string          `json:"job_id"`
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		jobID, err := uuid.Parse(payload.JobID)
		if err != nil {
			continue
		}

		h.sendLocal(jobID, payload.Message)
	}
}
