package mocks

import (
	"sync"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/ports"
)

// MockWorkflowMetrics counts workflow events.
type MockWorkflowMetrics struct {
	mu        sync.Mutex
	Submitted int
	Decisions map[domain.ApplicationStatus]int
}

var _ ports.WorkflowMetrics = (*MockWorkflowMetrics)(nil)

func NewMockWorkflowMetrics() *MockWorkflowMetrics {
	return &MockWorkflowMetrics{Decisions: make(map[domain.ApplicationStatus]int)}
}

func (m *MockWorkflowMetrics) ApplicationSubmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Submitted++
}

func (m *MockWorkflowMetrics) ApplicationDecided(status domain.ApplicationStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Decisions[status]++
}
