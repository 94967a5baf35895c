package mocks

import (
	"context"
	"sync"

	"github.com/Seyramize/BE-sub000/internal/domain"
)

// MockNotificationRepo is an in-memory marker store with real claim-once
// semantics, so tests can assert that duplicate triggers are suppressed.
type MockNotificationRepo struct {
	mu      sync.Mutex
	claimed map[string]bool

	ClaimErr error
}

func NewMockNotificationRepo() *MockNotificationRepo {
	return &MockNotificationRepo{claimed: make(map[string]bool)}
}

func (m *MockNotificationRepo) Claim(ctx context.Context, sessionID, notificationType string) error {
	if m.ClaimErr != nil {
		return m.ClaimErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := sessionID + "|" + notificationType
	if m.claimed[key] {
		return domain.ErrDuplicateNotification
	}
	m.claimed[key] = true
	return nil
}

func (m *MockNotificationRepo) Claimed(sessionID, notificationType string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claimed[sessionID+"|"+notificationType]
}
