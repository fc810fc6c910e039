package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/city-geo-service/internal/domain"
)

// MockCityRepository is a mock of CityRepository
type MockCityRepository struct {
	mock.Mock
}

func (m *MockCityRepository) FindByGUID(guid string) (*domain.City, bool) {
	args := m.Called(guid)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.City), args.Bool(1)
}

func (m *MockCityRepository) Filter(pred domain.CityPredicate) []domain.City {
	args := m.Called(pred)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.City)
}

func (m *MockCityRepository) All() []domain.City {
	args := m.Called()
	return args.Get(0).([]domain.City)
}

func (m *MockCityRepository) Len() int {
	args := m.Called()
	return args.Int(0)
}

// MockAreaJobRepository is a mock of AreaJobRepository
type MockAreaJobRepository struct {
	mock.Mock
}

func (m *MockAreaJobRepository) Create(ctx context.Context, originGUID string, radiusKm float64) (string, error) {
	args := m.Called(ctx, originGUID, radiusKm)
	return args.String(0), args.Error(1)
}

func (m *MockAreaJobRepository) Complete(ctx context.Context, id string, result []domain.City) error {
	args := m.Called(ctx, id, result)
	return args.Error(0)
}

func (m *MockAreaJobRepository) Fail(ctx context.Context, id string, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockAreaJobRepository) Get(ctx context.Context, id string) (*domain.AreaJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AreaJob), args.Error(1)
}
