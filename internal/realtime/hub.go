package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

const (
	outboundBuffer    = 16
	heartbeatInterval = 15 * time.Second
)

// Client is one open event stream watching a single project.
type Client struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProjectID uuid.UUID
	Outbound  chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// Hub fans bus events out to the stream clients watching each project.
type Hub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[uuid.UUID]map[*Client]bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:           log.With("component", "EventHub"),
		subscriptions: make(map[uuid.UUID]map[*Client]bool),
	}
}

func (hub *Hub) Subscribe(userID, projectID uuid.UUID) *Client {
	client := &Client{
		ID:        uuid.New(),
		UserID:    userID,
		ProjectID: projectID,
		Outbound:  make(chan Event, outboundBuffer),
		done:      make(chan struct{}),
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()
	clients, ok := hub.subscriptions[projectID]
	if !ok {
		clients = make(map[*Client]bool)
		hub.subscriptions[projectID] = clients
	}
	clients[client] = true
	hub.log.Debug("stream client subscribed", "client_id", client.ID, "project_id", projectID)
	return client
}

func (hub *Hub) Unsubscribe(client *Client) {
	if client == nil {
		return
	}
	hub.mu.Lock()
	if clients, ok := hub.subscriptions[client.ProjectID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(hub.subscriptions, client.ProjectID)
		}
	}
	hub.mu.Unlock()
	client.closeOnce.Do(func() { close(client.done) })
}

// Broadcast never blocks; a client whose buffer is full misses the event.
// A project deletion closes every stream on that project.
func (hub *Hub) Broadcast(ev Event) {
	hub.mu.RLock()
	var stale []*Client
	for c := range hub.subscriptions[ev.ProjectID] {
		select {
		case c.Outbound <- ev:
		default:
			hub.log.Warn("dropping stream event; outbound buffer full", "client_id", c.ID)
		}
		if ev.Action == projectDeletedAction {
			stale = append(stale, c)
		}
	}
	hub.mu.RUnlock()
	for _, c := range stale {
		hub.Unsubscribe(c)
	}
}

func (hub *Hub) Subscribers(projectID uuid.UUID) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.subscriptions[projectID])
}

// ServeHTTP streams the client's events as server-sent events until the
// request ends or the client is unsubscribed.
func (hub *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *Client) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev := <-client.Outbound:
			if !hub.write(w, ev) {
				continue
			}
			flusher.Flush()
		case <-client.done:
			// Drain what was queued before the close.
			for {
				select {
				case ev := <-client.Outbound:
					if hub.write(w, ev) {
						flusher.Flush()
					}
				default:
					return
				}
			}
		}
	}
}

func (hub *Hub) write(w http.ResponseWriter, ev Event) bool {
	raw, err := json.Marshal(ev)
	if err != nil {
		hub.log.Warn("marshal stream event failed", "error", err)
		return false
	}
	_, _ = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Action, raw)
	return true
}
