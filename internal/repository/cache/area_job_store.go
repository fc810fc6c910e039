package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/city-geo-service/internal/domain"
	"github.com/city-geo-service/internal/domain/repository"
)

const (
	areaJobKeyPrefix = "area_job:"
	// maxTxRetries - попытки WATCH/MULTI при конкурентной записи того же ключа
	maxTxRetries = 3
)

// AreaJobStoreOptions - параметры хранения задач в Redis
type AreaJobStoreOptions struct {
	// PendingTTL - TTL pending задачи (задержка сканирования + retention); 0 - без TTL
	PendingTTL time.Duration
	// Retention - TTL ready/failed задачи; 0 - без TTL
	Retention time.Duration

	Now   func() time.Time
	NewID func() string
}

// AreaJobStore - хранилище задач в Redis, разделяемое несколькими инстансами API.
// Вытеснение выполняет сам Redis через TTL ключей.
type AreaJobStore struct {
	client *redis.Client
	opts   AreaJobStoreOptions
	logger *zap.Logger
}

var _ repository.AreaJobRepository = (*AreaJobStore)(nil)

func NewAreaJobStore(client *redis.Client, opts AreaJobStoreOptions, logger *zap.Logger) *AreaJobStore {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AreaJobStore{
		client: client,
		opts:   opts,
		logger: logger,
	}
}

func (s *AreaJobStore) Create(ctx context.Context, originGUID string, radiusKm float64) (string, error) {
	id := s.opts.NewID()
	job := domain.NewAreaJob(id, originGUID, radiusKm, s.opts.Now())

	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal area job: %w", err)
	}

	ok, err := s.client.SetNX(ctx, jobKey(id), data, s.opts.PendingTTL).Result()
	if err != nil {
		s.logger.Error("Failed to create area job", zap.String("job_id", id), zap.Error(err))
		return "", fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("job id collision: %s", id)
	}

	return id, nil
}

func (s *AreaJobStore) Complete(ctx context.Context, id string, result []domain.City) error {
	return s.transition(ctx, id, func(job *domain.AreaJob) {
		job.MarkReady(result, s.opts.Now())
	})
}

func (s *AreaJobStore) Fail(ctx context.Context, id string, reason string) error {
	return s.transition(ctx, id, func(job *domain.AreaJob) {
		job.MarkFailed(reason, s.opts.Now())
	})
}

func (s *AreaJobStore) Get(ctx context.Context, id string) (*domain.AreaJob, error) {
	data, err := s.client.Get(ctx, jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		s.logger.Error("Failed to get area job", zap.String("job_id", id), zap.Error(err))
		return nil, fmt.Errorf("redis get: %w", err)
	}

	return decodeJob(data)
}

// transition атомарно переводит задачу из pending: WATCH ключа, проверка
// состояния и запись в MULTI. Конкурентная запись прерывает EXEC.
func (s *AreaJobStore) transition(ctx context.Context, id string, apply func(job *domain.AreaJob)) error {
	key := jobKey(id)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrJobNotFound
		}
		if err != nil {
			return fmt.Errorf("redis get: %w", err)
		}

		job, err := decodeJob(data)
		if err != nil {
			return err
		}
		if job.State.IsTerminal() {
			return fmt.Errorf("job %s is %s: %w", id, job.State, domain.ErrJobAlreadyTerminal)
		}

		apply(job)

		updated, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("marshal area job: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, s.opts.Retention)
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = s.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		s.logger.Debug("Area job transition retried",
			zap.String("job_id", id),
			zap.Int("attempt", attempt+1))
	}

	return fmt.Errorf("area job %s transition: %w", id, err)
}

func decodeJob(data []byte) (*domain.AreaJob, error) {
	var job domain.AreaJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("unmarshal area job: %w", err)
	}
	// пустой результат теряется из-за omitempty
	if job.State == domain.JobStateReady && job.Result == nil {
		job.Result = []domain.City{}
	}
	return &job, nil
}

func jobKey(id string) string {
	return areaJobKeyPrefix + id
}
