package repository

import (
	"context"

	"github.com/city-geo-service/internal/domain"
)

// AreaJobRepository определяет хранилище задач поиска по радиусу.
// Из pending задачу переводит ровно один писатель; повторный переход
// отклоняется с domain.ErrJobAlreadyTerminal.
type AreaJobRepository interface {
	// Create создает задачу в pending и возвращает новый уникальный id
	Create(ctx context.Context, originGUID string, radiusKm float64) (string, error)

	// Complete переводит задачу в ready и сохраняет результат
	Complete(ctx context.Context, id string, result []domain.City) error

	// Fail переводит задачу в failed
	Fail(ctx context.Context, id string, reason string) error

	// Get возвращает снимок задачи или domain.ErrJobNotFound
	Get(ctx context.Context, id string) (*domain.AreaJob, error)
}
