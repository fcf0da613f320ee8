package app

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/hfdl/internal/logging"
	"github.com/raysh454/hfdl/internal/mirror"
)

type JobEventType string

const (
	JobEventStatus   JobEventType = "status"
	JobEventProgress JobEventType = "progress"
	JobEventResult   JobEventType = "result"
)

type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	// For status changes
	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// For progress
	Links int `json:"links,omitempty"`

	// For the result
	ScriptID string `json:"script_id,omitempty"`
	Script   string `json:"script,omitempty"`
}

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

const jobEventBuffer = 16

// Job tracks one background generation. Events is closed when the job ends.
type Job struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Target    mirror.Target `json:"target"`
	Status    JobStatus     `json:"status"`
	Error     string        `json:"error,omitempty"`
	Links     int           `json:"links"`
	ScriptID  string        `json:"script_id,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at,omitzero"`
	Events    chan JobEvent `json:"-"`
}

func (s *Service) emitJobEvent(jobID string, ev JobEvent) {
	s.jobsMu.Lock()
	job, ok := s.jobs[jobID]
	s.jobsMu.Unlock()
	if !ok || job == nil || job.Events == nil {
		return
	}

	// Non-blocking send; drop if buffer is full.
	select {
	case job.Events <- ev:
	default:
	}
}

func (s *Service) updateJob(jobID string, fn func(j *Job)) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	if j, ok := s.jobs[jobID]; ok {
		fn(j)
	}
}

func (s *Service) setStatus(jobID string, status JobStatus, errMsg string) {
	s.updateJob(jobID, func(j *Job) {
		j.Status = status
		j.Error = errMsg
	})
	s.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: status, Error: errMsg})
}

// StartGenerateJob runs Generate for t in the background. The returned Job is
// a snapshot; read its Events channel for progress and use GetJob for state.
func (s *Service) StartGenerateJob(ctx context.Context, t mirror.Target) (*Job, error) {
	jobID := uuid.New().String()
	job := &Job{
		ID:        jobID,
		Type:      "generate",
		Target:    t,
		Status:    JobPending,
		StartedAt: time.Now().UTC(),
		Events:    make(chan JobEvent, jobEventBuffer),
	}

	jobCtx, cancel := context.WithCancel(ctx)

	s.jobsMu.Lock()
	if s.closed {
		s.jobsMu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	s.jobs[jobID] = job
	s.jobCancels[jobID] = cancel
	snapshot := *job
	s.jobsWG.Add(1)
	s.jobsMu.Unlock()

	s.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobPending})

	go func() {
		defer s.jobsWG.Done()
		defer func() {
			s.jobsMu.Lock()
			j := s.jobs[jobID]
			j.EndedAt = time.Now().UTC()
			delete(s.jobCancels, jobID)
			s.jobsMu.Unlock()
			cancel()

			// Close events channel so websocket loop can terminate cleanly
			close(j.Events)
		}()

		s.setStatus(jobID, JobRunning, "")

		sc, err := s.generate(jobCtx, t, func(n int) {
			s.updateJob(jobID, func(j *Job) { j.Links = n })
			s.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventProgress, Links: n})
		})

		if err != nil && jobCtx.Err() != nil {
			s.setStatus(jobID, JobCanceled, jobCtx.Err().Error())
			return
		}
		if err != nil {
			s.logger.Warn("generate job failed", logging.Field{Key: "job_id", Value: jobID}, logging.Field{Key: "error", Value: err})
			s.setStatus(jobID, JobFailed, err.Error())
			return
		}

		s.updateJob(jobID, func(j *Job) {
			j.Status = JobDone
			j.ScriptID = sc.ID
		})
		s.emitJobEvent(jobID, JobEvent{
			JobID:    jobID,
			Type:     JobEventResult,
			Status:   JobDone,
			Links:    len(sc.Links),
			ScriptID: sc.ID,
			Script:   sc.Content,
		})
	}()

	return &snapshot, nil
}

// CancelJob cancels a running job. Unknown or finished jobs are ignored.
func (s *Service) CancelJob(jobID string) {
	s.jobsMu.Lock()
	cancel := s.jobCancels[jobID]
	s.jobsMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// GetJob returns a snapshot of the job.
func (s *Service) GetJob(jobID string) (Job, error) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return *j, nil
}

// ListJobs returns snapshots of every job, oldest first.
func (s *Service) ListJobs() []Job {
	s.jobsMu.Lock()
	out := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *j)
	}
	s.jobsMu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}
