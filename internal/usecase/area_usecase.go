package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/city-geo-service/internal/domain"
	"github.com/city-geo-service/internal/domain/repository"
	"github.com/city-geo-service/internal/pkg/errors"
	"github.com/city-geo-service/internal/pkg/utils"
	"github.com/city-geo-service/internal/pkg/validator"
	"github.com/city-geo-service/internal/usecase/dto"
)

const (
	// scanWriteTimeout - таймаут записи результата сканирования в хранилище
	scanWriteTimeout = 5 * time.Second

	reasonOriginMissing = "origin city is no longer in the catalog"
	reasonShutdown      = "service shutting down"
)

// AreaUseCase - асинхронный поиск городов в радиусе.
//
// Submit создает задачу в pending и откладывает сканирование на delay через таймер,
// не блокируя обработку запроса. Из pending задачу переводит только отложенный
// обработчик этой задачи (или Shutdown, если таймер не успел сработать).
type AreaUseCase struct {
	cityRepo repository.CityRepository
	jobRepo  repository.AreaJobRepository
	logger   *zap.Logger
	delay    time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
	wg     sync.WaitGroup
}

// NewAreaUseCase - создание нового AreaUseCase
func NewAreaUseCase(
	cityRepo repository.CityRepository,
	jobRepo repository.AreaJobRepository,
	logger *zap.Logger,
	delay time.Duration,
) *AreaUseCase {
	return &AreaUseCase{
		cityRepo: cityRepo,
		jobRepo:  jobRepo,
		logger:   logger,
		delay:    delay,
		timers:   make(map[string]*time.Timer),
	}
}

// Submit - проверка запроса, создание задачи и планирование сканирования.
// Неизвестный origin и невалидный радиус отклоняются синхронно, задача не создается.
func (uc *AreaUseCase) Submit(ctx context.Context, req dto.AreaRequest) (*dto.AreaSubmitResult, error) {
	origin, ok := uc.cityRepo.FindByGUID(req.From)
	if !ok {
		return nil, errors.ErrCityNotFound.WithDetails(map[string]interface{}{"guid": req.From})
	}

	if err := validator.Validate(&req); err != nil {
		return nil, errors.ErrInvalidRadius
	}

	uc.mu.Lock()
	closed := uc.closed
	uc.mu.Unlock()
	if closed {
		return nil, errors.ErrShuttingDown
	}

	jobID, err := uc.jobRepo.Create(ctx, origin.GUID, req.Distance)
	if err != nil {
		if stderrors.Is(err, domain.ErrJobStoreFull) {
			uc.logger.Warn("Area job store is full", zap.String("origin_guid", origin.GUID))
			return nil, errors.ErrTooManyJobs
		}
		uc.logger.Error("Failed to create area job", zap.Error(err))
		return nil, errors.ErrJobStoreError
	}

	if !uc.schedule(jobID, origin.GUID, req.Distance) {
		uc.failJob(jobID, reasonShutdown)
		return nil, errors.ErrShuttingDown
	}

	uc.logger.Info("Area search submitted",
		zap.String("job_id", jobID),
		zap.String("origin_guid", origin.GUID),
		zap.Float64("radius_km", req.Distance),
		zap.Duration("delay", uc.delay))

	return &dto.AreaSubmitResult{JobID: jobID}, nil
}

// Poll - текущее состояние задачи
func (uc *AreaUseCase) Poll(ctx context.Context, jobID string) (*dto.AreaPollResult, error) {
	job, err := uc.jobRepo.Get(ctx, jobID)
	if err != nil {
		if stderrors.Is(err, domain.ErrJobNotFound) {
			return nil, errors.ErrJobNotFound
		}
		uc.logger.Error("Failed to get area job", zap.String("job_id", jobID), zap.Error(err))
		return nil, errors.ErrJobStoreError
	}

	switch job.State {
	case domain.JobStatePending:
		return &dto.AreaPollResult{Ready: false}, nil
	case domain.JobStateReady:
		return &dto.AreaPollResult{Ready: true, Cities: job.Result}, nil
	case domain.JobStateFailed:
		return nil, errors.ErrJobFailed.WithDetails(map[string]interface{}{
			"job_id": job.ID,
			"reason": job.Error,
		})
	default:
		return nil, fmt.Errorf("unknown job state %q", job.State)
	}
}

// Shutdown останавливает еще не сработавшие таймеры, переводит их задачи в failed
// и ждет завершения уже идущих сканирований.
func (uc *AreaUseCase) Shutdown(ctx context.Context) error {
	uc.mu.Lock()
	uc.closed = true
	var stopped []string
	for id, t := range uc.timers {
		if t.Stop() {
			stopped = append(stopped, id)
			uc.wg.Done()
		}
		delete(uc.timers, id)
	}
	uc.mu.Unlock()

	for _, id := range stopped {
		uc.failJob(id, reasonShutdown)
	}
	if len(stopped) > 0 {
		uc.logger.Info("Pending area jobs failed on shutdown", zap.Int("count", len(stopped)))
	}

	done := make(chan struct{})
	go func() {
		uc.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("area scans did not finish: %w", ctx.Err())
	}
}

func (uc *AreaUseCase) schedule(jobID, originGUID string, radiusKm float64) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.closed {
		return false
	}

	uc.wg.Add(1)
	uc.timers[jobID] = time.AfterFunc(uc.delay, func() {
		defer uc.wg.Done()

		uc.mu.Lock()
		delete(uc.timers, jobID)
		uc.mu.Unlock()

		uc.runScan(jobID, originGUID, radiusKm)
	})

	return true
}

// runScan выполняет сканирование и записывает результат. Паника внутри
// сканирования переводит задачу в failed, а не оставляет ее в pending.
func (uc *AreaUseCase) runScan(jobID, originGUID string, radiusKm float64) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("Area scan panicked",
				zap.String("job_id", jobID),
				zap.Any("panic", r))
			uc.failJob(jobID, fmt.Sprintf("scan panicked: %v", r))
		}
	}()

	origin, ok := uc.cityRepo.FindByGUID(originGUID)
	if !ok {
		uc.logger.Warn("Origin city disappeared before scan",
			zap.String("job_id", jobID),
			zap.String("origin_guid", originGUID))
		uc.failJob(jobID, reasonOriginMissing)
		return
	}

	nearby := uc.scan(*origin, radiusKm)

	ctx, cancel := context.WithTimeout(context.Background(), scanWriteTimeout)
	defer cancel()

	if err := uc.jobRepo.Complete(ctx, jobID, nearby); err != nil {
		uc.logger.Error("Failed to complete area job",
			zap.String("job_id", jobID),
			zap.Error(err))
		return
	}

	uc.logger.Info("Area search completed",
		zap.String("job_id", jobID),
		zap.String("origin_guid", originGUID),
		zap.Float64("radius_km", radiusKm),
		zap.Int("found", len(nearby)),
		zap.Duration("scan_time", time.Since(start)))
}

// scan - все города, кроме origin, на расстоянии не больше radiusKm, в порядке каталога
func (uc *AreaUseCase) scan(origin domain.City, radiusKm float64) []domain.City {
	from := origin.Coordinate()
	return uc.cityRepo.Filter(func(c domain.City) bool {
		if c.GUID == origin.GUID {
			return false
		}
		return utils.HaversineDistance(from, c.Coordinate()) <= radiusKm
	})
}

func (uc *AreaUseCase) failJob(jobID, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), scanWriteTimeout)
	defer cancel()

	if err := uc.jobRepo.Fail(ctx, jobID, reason); err != nil {
		uc.logger.Error("Failed to mark area job as failed",
			zap.String("job_id", jobID),
			zap.String("reason", reason),
			zap.Error(err))
	}
}
