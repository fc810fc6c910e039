package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/city-geo-service/internal/domain"
	"github.com/city-geo-service/internal/domain/repository"
)

// AreaJobStoreOptions - параметры хранения задач
type AreaJobStoreOptions struct {
	// Retention - сколько хранить ready/failed задачи; 0 - бессрочно
	Retention time.Duration
	// MaxJobs - лимит задач в памяти; 0 - без лимита
	MaxJobs int

	Now   func() time.Time
	NewID func() string
}

// AreaJobStore - хранилище задач в памяти с вытеснением завершенных задач
// по окну хранения и по лимиту количества. Pending задачи не вытесняются.
type AreaJobStore struct {
	mu    sync.RWMutex
	jobs  map[string]*domain.AreaJob
	order []string // id в порядке создания

	retention time.Duration
	maxJobs   int
	now       func() time.Time
	newID     func() string
	logger    *zap.Logger
}

var _ repository.AreaJobRepository = (*AreaJobStore)(nil)

func NewAreaJobStore(opts AreaJobStoreOptions, logger *zap.Logger) *AreaJobStore {
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
		jobs:      make(map[string]*domain.AreaJob),
		retention: opts.Retention,
		maxJobs:   opts.MaxJobs,
		now:       opts.Now,
		newID:     opts.NewID,
		logger:    logger,
	}
}

func (s *AreaJobStore) Create(ctx context.Context, originGUID string, radiusKm float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if s.maxJobs > 0 && len(s.jobs) >= s.maxJobs {
		s.sweepLocked(now)
		for len(s.jobs) >= s.maxJobs {
			if !s.evictOldestTerminalLocked() {
				return "", domain.ErrJobStoreFull
			}
		}
	}

	id := s.newID()
	if _, exists := s.jobs[id]; exists {
		return "", fmt.Errorf("job id collision: %s", id)
	}

	s.jobs[id] = domain.NewAreaJob(id, originGUID, radiusKm, now)
	s.order = append(s.order, id)

	return id, nil
}

func (s *AreaJobStore) Complete(ctx context.Context, id string, result []domain.City) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.pendingLocked(id)
	if err != nil {
		return err
	}

	stored := make([]domain.City, len(result))
	for i, c := range result {
		stored[i] = c.Clone()
	}
	job.MarkReady(stored, s.now())

	return nil
}

func (s *AreaJobStore) Fail(ctx context.Context, id string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.pendingLocked(id)
	if err != nil {
		return err
	}
	job.MarkFailed(reason, s.now())

	return nil
}

func (s *AreaJobStore) Get(ctx context.Context, id string) (*domain.AreaJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok || job.ExpiredAt(s.now(), s.retention) {
		return nil, domain.ErrJobNotFound
	}

	return job.Snapshot(), nil
}

// Sweep удаляет завершенные задачи старше окна хранения, возвращает число удаленных
func (s *AreaJobStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.sweepLocked(now)
	if removed > 0 {
		s.logger.Debug("Expired area jobs evicted",
			zap.Int("removed", removed),
			zap.Int("remaining", len(s.jobs)))
	}
	return removed
}

// Len возвращает число задач, включая еще не вычищенные истекшие
func (s *AreaJobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

func (s *AreaJobStore) pendingLocked(id string) (*domain.AreaJob, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	if job.State.IsTerminal() {
		return nil, fmt.Errorf("job %s is %s: %w", id, job.State, domain.ErrJobAlreadyTerminal)
	}
	return job, nil
}

func (s *AreaJobStore) sweepLocked(now time.Time) int {
	if s.retention <= 0 {
		return 0
	}

	removed := 0
	kept := s.order[:0]
	for _, id := range s.order {
		job := s.jobs[id]
		if job.ExpiredAt(now, s.retention) {
			delete(s.jobs, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept

	return removed
}

func (s *AreaJobStore) evictOldestTerminalLocked() bool {
	for i, id := range s.order {
		if s.jobs[id].State.IsTerminal() {
			delete(s.jobs, id)
			s.order = append(s.order[:i], s.order[i+1:]...)
			s.logger.Debug("Area job evicted by capacity", zap.String("job_id", id))
			return true
		}
	}
	return false
}
