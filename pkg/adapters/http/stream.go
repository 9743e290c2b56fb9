package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/printdesk/internal/logging"
	"github.com/aretw0/printdesk/pkg/domain"
)

// Stream topics.
const (
	TopicOutputs   = "outputs"
	TopicTemplates = "templates"
)

// OutputTopic is the topic carrying the events of a single data output.
func OutputTopic(id int64) string {
	return fmt.Sprintf("output:%d", id)
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // Topic -> Set of Channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager. A nil logger discards output.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a listener on topic. The returned function unsubscribes
// and closes the channel.
func (sm *StreamManager) Subscribe(topic string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[topic]; !ok {
		sm.subscribers[topic] = make(map[chan<- string]struct{})
	}
	sm.subscribers[topic][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[topic]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, topic)
				}
			}
		})
	}
}

// Broadcast sends msg to every listener of topic without blocking.
func (sm *StreamManager) Broadcast(topic string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	subs, ok := sm.subscribers[topic]
	if !ok {
		return
	}
	sm.logger.Debug("StreamManager: Broadcasting", "topic", topic, "subscribers", len(subs), "payload_size", len(msg))
	for ch := range subs {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "topic", topic)
		}
	}
}

// Subscribers returns the number of listeners on topic.
func (sm *StreamManager) Subscribers(topic string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[topic])
}

// Hooks publishes print and cleanup events as JSON on the outputs topic and
// on the topic of the affected output.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	publish := func(_ context.Context, e *domain.PrintEvent) {
		data, err := json.Marshal(e)
		if err != nil {
			sm.logger.Warn("Failed to encode print event", "err", err)
			return
		}
		sm.Broadcast(TopicOutputs, string(data))
		sm.Broadcast(OutputTopic(e.OutputID), string(data))
	}
	return domain.LifecycleHooks{
		OnPrintStart:    publish,
		OnPrintComplete: publish,
		OnPrintError:    publish,
		OnCleanup: func(_ context.Context, e *domain.CleanupEvent) {
			data, err := json.Marshal(e)
			if err != nil {
				sm.logger.Warn("Failed to encode cleanup event", "err", err)
				return
			}
			sm.Broadcast(TopicOutputs, string(data))
		},
	}
}
