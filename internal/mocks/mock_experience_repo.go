package mocks

import (
	"context"

	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockExperienceRepo struct {
	mock.Mock
	domain.ExperienceRepository
}

func (m *MockExperienceRepo) GetAll(ctx context.Context) ([]*domain.Experience, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Experience), args.Error(1)
}

func (m *MockExperienceRepo) GetById(ctx context.Context, id string) (*domain.Experience, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Experience), args.Error(1)
}

func (m *MockExperienceRepo) GetBySlug(ctx context.Context, slug string) (*domain.Experience, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Experience), args.Error(1)
}

func (m *MockExperienceRepo) GetByTitle(ctx context.Context, title string) (*domain.Experience, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Experience), args.Error(1)
}
