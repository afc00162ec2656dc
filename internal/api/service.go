package api

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"clipforge/internal/config"
	"clipforge/internal/queue"
)

// ErrNotFound indicates a status query named an unknown job identifier.
var ErrNotFound = errors.New("job not found")

// JobStore abstracts the queue persistence operations the API uses.
type JobStore interface {
	NewJob(ctx context.Context, params queue.NewJobParams) (*queue.Job, error)
	GetByJobID(ctx context.Context, jobID string) (*queue.Job, error)
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Job, error)
	Stats(ctx context.Context) (map[queue.Status]int, error)
	RemoveIfActive(ctx context.Context, jobID string) (bool, error)
}

// JobService exposes job lifecycle operations returning API DTOs.
type JobService struct {
	cfg   *config.Config
	store JobStore
}

// NewJobService constructs a JobService around the provided store.
func NewJobService(cfg *config.Config, store JobStore) *JobService {
	if store == nil {
		return nil
	}
	return &JobService{cfg: cfg, store: store}
}

// Submit validates and enqueues a submission. Resubmitting an identifier that
// already exists returns the existing run instead of starting a duplicate.
func (s *JobService) Submit(ctx context.Context, submission Submission) (SubmitResponse, error) {
	if s == nil || s.store == nil {
		return SubmitResponse{}, errors.New("job service not configured")
	}
	if err := submission.Validate(s.cfg.Clips.MinDurationSeconds, s.cfg.Clips.MaxDurationSeconds); err != nil {
		return SubmitResponse{}, err
	}

	jobID := strings.TrimSpace(submission.JobID)
	if jobID == "" {
		jobID = uuid.NewString()
	}

	job, err := s.store.NewJob(ctx, queue.NewJobParams{
		JobID:           jobID,
		SourceURL:       strings.TrimSpace(submission.SourceURL),
		SourceKey:       strings.TrimSpace(submission.SourceKey),
		TargetDuration:  submission.TargetDuration,
		MetadataJSON:    string(submission.Metadata),
		PreferencesJSON: string(submission.Preferences),
	})
	if errors.Is(err, queue.ErrDuplicateJob) {
		existing, lookupErr := s.store.GetByJobID(ctx, jobID)
		if lookupErr != nil {
			return SubmitResponse{}, lookupErr
		}
		if existing == nil {
			return SubmitResponse{}, err
		}
		return SubmitResponse{JobID: existing.JobID, Status: string(existing.Status), Existing: true}, nil
	}
	if err != nil {
		return SubmitResponse{}, err
	}
	return SubmitResponse{JobID: job.JobID, Status: string(job.Status)}, nil
}

// Status returns the current snapshot of a job, or ErrNotFound.
func (s *JobService) Status(ctx context.Context, jobID string) (JobView, error) {
	if s == nil || s.store == nil {
		return JobView{}, errors.New("job service not configured")
	}
	job, err := s.store.GetByJobID(ctx, jobID)
	if err != nil {
		return JobView{}, err
	}
	if job == nil {
		return JobView{}, ErrNotFound
	}
	return FromJob(job), nil
}

// Cancel removes a job that has not finished. Terminal and unknown jobs
// report false; an in-flight external operation is not interrupted, only
// further stage transitions are prevented.
func (s *JobService) Cancel(ctx context.Context, jobID string) (CancelResponse, error) {
	if s == nil || s.store == nil {
		return CancelResponse{}, errors.New("job service not configured")
	}
	removed, err := s.store.RemoveIfActive(ctx, jobID)
	if err != nil {
		return CancelResponse{}, err
	}
	return CancelResponse{JobID: jobID, Cancelled: removed}, nil
}

// List returns jobs filtered by status.
func (s *JobService) List(ctx context.Context, statuses ...queue.Status) ([]JobView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	jobs, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromJobs(jobs), nil
}

// Stats returns queue summary counts keyed by status string.
func (s *JobService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeQueueStats(stats), nil
}
