package api

import (
	"encoding/json"
	"time"

	"clipforge/internal/queue"
)

// FromJob converts a queue job into its API representation.
func FromJob(job *queue.Job) JobView {
	if job == nil {
		return JobView{}
	}
	view := JobView{
		ID:           job.ID,
		JobID:        job.JobID,
		SourceURL:    job.SourceURL,
		SourceKey:    job.SourceKey,
		Status:       string(job.Status),
		ErrorMessage: job.ErrorMessage,
		Attempt:      job.Attempt,
		Progress: JobProgress{
			Stage:   job.ProgressStage,
			Percent: job.ProgressPercent,
			Message: job.ProgressMessage,
		},
		CreatedAt: formatTime(job.CreatedAt),
		UpdatedAt: formatTime(job.UpdatedAt),
	}
	if job.FinishedAt != nil {
		view.FinishedAt = formatTime(*job.FinishedAt)
	}
	if job.ResultJSON != "" && json.Valid([]byte(job.ResultJSON)) {
		view.Result = json.RawMessage(job.ResultJSON)
	}
	return view
}

// FromJobs converts a slice of queue jobs.
func FromJobs(jobs []*queue.Job) []JobView {
	views := make([]JobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, FromJob(job))
	}
	return views
}

// MergeQueueStats normalizes queue stats so every known status has a count.
func MergeQueueStats(stats map[queue.Status]int) map[string]int {
	merged := make(map[string]int, len(stats))
	for _, status := range queue.AllStatuses() {
		merged[string(status)] = stats[status]
	}
	return merged
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(dateTimeFormat)
}
