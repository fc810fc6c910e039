package janitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/city-geo-service/internal/worker"
)

const defaultInterval = time.Minute

// Sweeper - хранилище, которое умеет удалять просроченные задачи
type Sweeper interface {
	Sweep(now time.Time) int
}

// JobJanitor периодически удаляет завершенные задачи, у которых истекло окно хранения
type JobJanitor struct {
	*worker.BaseWorker
	store    Sweeper
	interval time.Duration
	now      func() time.Time
}

// NewJobJanitor создает новый JobJanitor. interval <= 0 заменяется на минуту.
func NewJobJanitor(store Sweeper, interval time.Duration, logger *zap.Logger) *JobJanitor {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &JobJanitor{
		BaseWorker: worker.NewBaseWorker("area-job-janitor", logger),
		store:      store,
		interval:   interval,
		now:        time.Now,
	}
}

// Start запускает воркер
func (j *JobJanitor) Start(ctx context.Context) error {
	logger := j.Logger()
	logger.Info("Starting job janitor", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return nil

		case <-ticker.C:
			if removed := j.store.Sweep(j.now()); removed > 0 {
				logger.Debug("Expired area jobs removed", zap.Int("removed", removed))
			}
		}
	}
}

var _ worker.Worker = (*JobJanitor)(nil)
