package mocks

import (
	"context"
	"sync"

	"github.com/Seyramize/BE-sub000/internal/domain"
)

type MockGuestlist struct {
	mu      sync.Mutex
	entries []domain.GuestlistEntry

	AppendErr error
}

func (m *MockGuestlist) Append(ctx context.Context, entry domain.GuestlistEntry) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockGuestlist) Entries() []domain.GuestlistEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.GuestlistEntry(nil), m.entries...)
}
