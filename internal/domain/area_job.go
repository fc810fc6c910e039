package domain

import "time"

// JobState - состояние задачи поиска по радиусу
type JobState string

const (
	JobStatePending JobState = "pending"
	JobStateReady   JobState = "ready"
	JobStateFailed  JobState = "failed"
)

// IsTerminal - ready и failed конечные, из них переходов нет
func (s JobState) IsTerminal() bool {
	return s == JobStateReady || s == JobStateFailed
}

// AreaJob - асинхронная задача поиска городов в радиусе.
// Result заполнен тогда и только тогда, когда State == JobStateReady.
type AreaJob struct {
	ID          string     `json:"id"`
	State       JobState   `json:"state"`
	OriginGUID  string     `json:"origin_guid"`
	RadiusKm    float64    `json:"radius_km"`
	Result      []City     `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewAreaJob создает задачу в состоянии pending
func NewAreaJob(id, originGUID string, radiusKm float64, now time.Time) *AreaJob {
	return &AreaJob{
		ID:         id,
		State:      JobStatePending,
		OriginGUID: originGUID,
		RadiusKm:   radiusKm,
		CreatedAt:  now,
	}
}

// MarkReady переводит задачу в ready. Вызывающий отвечает за проверку IsTerminal.
func (j *AreaJob) MarkReady(result []City, now time.Time) {
	if result == nil {
		result = []City{}
	}
	j.State = JobStateReady
	j.Result = result
	j.Error = ""
	j.CompletedAt = &now
}

// MarkFailed переводит задачу в failed без результата
func (j *AreaJob) MarkFailed(reason string, now time.Time) {
	j.State = JobStateFailed
	j.Result = nil
	j.Error = reason
	j.CompletedAt = &now
}

// ExpiredAt сообщает, вышла ли завершенная задача за окно хранения.
// Pending задачи никогда не истекают.
func (j *AreaJob) ExpiredAt(now time.Time, retention time.Duration) bool {
	if !j.State.IsTerminal() || j.CompletedAt == nil || retention <= 0 {
		return false
	}
	return now.Sub(*j.CompletedAt) >= retention
}

// Snapshot возвращает глубокую копию задачи для читателей
func (j *AreaJob) Snapshot() *AreaJob {
	cp := *j
	if j.Result != nil {
		cp.Result = make([]City, len(j.Result))
		for i, c := range j.Result {
			cp.Result[i] = c.Clone()
		}
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}
