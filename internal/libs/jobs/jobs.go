// Package jobs tracks reconciliation runs and their outcome.
package jobs

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when a run id is unknown
var ErrRunNotFound = errors.New("run not found")

// Run statuses
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Job represents one reconciliation run
type Job struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Products   int        `json:"products"`
	Listings   int        `json:"listings"`
	Matched    int        `json:"matched"`
	Error      string     `json:"error,omitempty"`
}

// Counts are the figures recorded when a run finishes
type Counts struct {
	Products int
	Listings int
	Matched  int
}

func (j *Job) finished() bool {
	return j.Status == StatusDone || j.Status == StatusFailed
}

// Queue keeps runs in creation order. When limit is positive, finished runs
// are dropped oldest first once the queue holds more than limit runs.
// Pending and running runs are never dropped.
type Queue struct {
	mu    sync.RWMutex
	jobs  []*Job
	byID  map[string]*Job
	limit int
}

// NewQueue creates a new job queue holding at most limit runs; limit <= 0 means unbounded
func NewQueue(limit int) *Queue {
	return &Queue{
		jobs:  make([]*Job, 0),
		byID:  make(map[string]*Job),
		limit: limit,
	}
}

// Enqueue registers a new pending run
func (q *Queue) Enqueue() Job {
	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	q.byID[job.ID] = job
	q.evict()
	return *job
}

// evict drops the oldest finished runs while the queue is over its limit
func (q *Queue) evict() {
	if q.limit <= 0 {
		return
	}
	excess := len(q.jobs) - q.limit
	if excess <= 0 {
		return
	}

	kept := q.jobs[:0]
	for _, job := range q.jobs {
		if excess > 0 && job.finished() {
			delete(q.byID, job.ID)
			excess--
			continue
		}
		kept = append(kept, job)
	}
	for i := len(kept); i < len(q.jobs); i++ {
		q.jobs[i] = nil
	}
	q.jobs = kept
}

// Start marks a run as running
func (q *Queue) Start(id string) error {
	return q.update(id, func(j *Job) {
		j.Status = StatusRunning
	})
}

// Finish marks a run as done and records its counts
func (q *Queue) Finish(id string, c Counts) error {
	return q.update(id, func(j *Job) {
		now := time.Now()
		j.Status = StatusDone
		j.FinishedAt = &now
		j.Products = c.Products
		j.Listings = c.Listings
		j.Matched = c.Matched
	})
}

// Fail marks a run as failed
func (q *Queue) Fail(id string, cause error) error {
	return q.update(id, func(j *Job) {
		now := time.Now()
		j.Status = StatusFailed
		j.FinishedAt = &now
		if cause != nil {
			j.Error = cause.Error()
		}
	})
}

func (q *Queue) update(id string, fn func(*Job)) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.byID[id]
	if !ok {
		return ErrRunNotFound
	}
	fn(job)
	return nil
}

// Get returns a copy of the run with the given id
func (q *Queue) Get(id string) (Job, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	job, ok := q.byID[id]
	if !ok {
		return Job{}, ErrRunNotFound
	}
	return *job, nil
}

// List returns copies of all runs, oldest first
func (q *Queue) List() []Job {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]Job, len(q.jobs))
	for i, job := range q.jobs {
		out[i] = *job
	}
	return out
}

// Count returns the number of jobs in the queue
func (q *Queue) Count() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.jobs)
}
