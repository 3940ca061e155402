package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/ports"
)

// MockProfileImageStore implements ports.ProfileImageStore in memory.
type MockProfileImageStore struct {
	mu      sync.Mutex
	Stored  map[string][]byte
	BaseURL string

	StoreError error
}

var _ ports.ProfileImageStore = (*MockProfileImageStore)(nil)

func NewMockProfileImageStore() *MockProfileImageStore {
	return &MockProfileImageStore{
		Stored:  make(map[string][]byte),
		BaseURL: "https://storage.test/profile-images",
	}
}

func (m *MockProfileImageStore) StoreProfileImage(ctx context.Context, userID string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StoreError != nil {
		return "", m.StoreError
	}
	m.Stored[userID] = data
	return fmt.Sprintf("%s/%s.jpg", m.BaseURL, userID), nil
}
