package sse

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	redisclient "github.com/snapvault/gallery-server-go/internal/redis"
)

const (
	HeartbeatInterval = 30 * time.Second
)

// Event is one live gallery feed entry, fanned out to every subscriber of an
// event over redis pub/sub so horizontally scaled instances all see it.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type Client struct {
	EventID string
	Events  chan Event
	Done    chan struct{}
}

type Feed struct {
	redis   *redisclient.Client
	clients map[string]map[*Client]bool // eventID -> set of clients
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewFeed(redisClient *redisclient.Client) *Feed {
	ctx, cancel := context.WithCancel(context.Background())
	return &Feed{
		redis:   redisClient,
		clients: make(map[string]map[*Client]bool),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (f *Feed) Subscribe(eventID string) *Client {
	client := &Client{
		EventID: eventID,
		Events:  make(chan Event, 100),
		Done:    make(chan struct{}),
	}

	f.mu.Lock()
	if f.clients[eventID] == nil {
		f.clients[eventID] = make(map[*Client]bool)
		go f.subscribeToRedis(eventID)
	}
	f.clients[eventID][client] = true
	clientCount := len(f.clients[eventID])
	f.mu.Unlock()

	log.Info().
		Str("eventId", eventID).
		Int("clientCount", clientCount).
		Msg("feed client subscribed")

	return client
}

func (f *Feed) Unsubscribe(client *Client) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if clients, ok := f.clients[client.EventID]; ok {
		delete(clients, client)
		close(client.Done)

		if len(clients) == 0 {
			delete(f.clients, client.EventID)
		}

		log.Info().
			Str("eventId", client.EventID).
			Int("clientCount", len(clients)).
			Msg("feed client unsubscribed")
	}
}

func (f *Feed) Publish(ctx context.Context, eventID string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	channel := redisclient.FeedChannel(eventID)
	return f.redis.Publish(ctx, channel, data).Err()
}

func (f *Feed) subscribeToRedis(eventID string) {
	channel := redisclient.FeedChannel(eventID)
	pubsub := f.redis.Subscribe(f.ctx, channel)
	defer pubsub.Close()

	log.Debug().
		Str("eventId", eventID).
		Str("channel", channel).
		Msg("redis pubsub subscribed")

	ch := pubsub.Channel()

	for {
		select {
		case <-f.ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Error().Err(err).Msg("failed to unmarshal feed event")
				continue
			}

			f.broadcast(eventID, event)
		}
	}
}

func (f *Feed) broadcast(eventID string, event Event) {
	f.mu.RLock()
	clients := f.clients[eventID]
	f.mu.RUnlock()

	for client := range clients {
		select {
		case client.Events <- event:
		default:
			log.Warn().
				Str("eventId", eventID).
				Msg("feed client buffer full, dropping event")
		}
	}
}

func (f *Feed) Close() {
	f.cancel()

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, clients := range f.clients {
		for client := range clients {
			close(client.Done)
		}
	}
	f.clients = make(map[string]map[*Client]bool)
}

func (f *Feed) ClientCount(eventID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients[eventID])
}
