package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/ports"
)

// MockApplicationEventPublisher implements ports.ApplicationEventPublisher without RabbitMQ.
type MockApplicationEventPublisher struct {
	mu sync.RWMutex

	PublishedEvents  []domain.OutboxEvent
	PublishError     error
	PublishCallCount int
}

var _ ports.ApplicationEventPublisher = (*MockApplicationEventPublisher)(nil)

func NewMockApplicationEventPublisher() *MockApplicationEventPublisher {
	return &MockApplicationEventPublisher{
		PublishedEvents: make([]domain.OutboxEvent, 0),
	}
}

func (m *MockApplicationEventPublisher) PublishApplicationEvent(ctx context.Context, evt domain.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCallCount++
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, evt)
	return nil
}

// GetPublishedEvents returns a copy of the published events.
func (m *MockApplicationEventPublisher) GetPublishedEvents() []domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]domain.OutboxEvent, len(m.PublishedEvents))
	copy(events, m.PublishedEvents)
	return events
}
