package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a pipeline job.
type Status string

const (
	StatusQueued          Status = "queued"
	StatusIngesting       Status = "ingesting"
	StatusIngested        Status = "ingested"
	StatusTranscribing    Status = "transcribing"
	StatusTranscribed     Status = "transcribed"
	StatusDetectingScenes Status = "detecting_scenes"
	StatusScenesDetected  Status = "scenes_detected"
	StatusRanking         Status = "ranking"
	StatusRanked          Status = "ranked"
	StatusRendering       Status = "rendering"
	StatusRendered        Status = "rendered"
	StatusGeneratingTexts Status = "generating_texts"
	StatusTextsGenerated  Status = "texts_generated"
	StatusExporting       Status = "exporting"
	StatusCompleted       Status = "completed"
	StatusFailed          Status = "failed"
)

// CancelReason is the failure message recorded when a caller cancels a job.
const CancelReason = "Cancelled by caller"

// ShutdownReason is the message recorded when jobs are interrupted by daemon shutdown.
const ShutdownReason = "Daemon stopped"

var allStatuses = []Status{
	StatusQueued,
	StatusIngesting,
	StatusIngested,
	StatusTranscribing,
	StatusTranscribed,
	StatusDetectingScenes,
	StatusScenesDetected,
	StatusRanking,
	StatusRanked,
	StatusRendering,
	StatusRendered,
	StatusGeneratingTexts,
	StatusTextsGenerated,
	StatusExporting,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusIngesting:       {},
	StatusTranscribing:    {},
	StatusDetectingScenes: {},
	StatusRanking:         {},
	StatusRendering:       {},
	StatusGeneratingTexts: {},
	StatusExporting:       {},
}

// stageRollback maps each processing status back to the start status of its
// stage. Used when reclaiming stuck jobs and when scheduling retries.
var stageRollback = map[Status]Status{
	StatusIngesting:       StatusQueued,
	StatusTranscribing:    StatusIngested,
	StatusDetectingScenes: StatusTranscribed,
	StatusRanking:         StatusScenesDetected,
	StatusRendering:       StatusRanked,
	StatusGeneratingTexts: StatusRendered,
	StatusExporting:       StatusTextsGenerated,
}

// RollbackStatus returns the stage start status a processing job should return
// to when its attempt is abandoned.
func RollbackStatus(processing Status) (Status, bool) {
	start, ok := stageRollback[processing]
	return start, ok
}

// HealthSummary describes aggregated job counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Queued     int
	Processing int
	Waiting    int
	Completed  int
	Failed     int
}

// Job represents a pipeline job persisted in SQLite.
type Job struct {
	ID              int64
	JobID           string
	SourceURL       string
	SourceKey       string
	TargetDuration  int
	MetadataJSON    string
	PreferencesJSON string
	Status          Status
	Attempt         int
	NextRetryAt     *time.Time
	DataJSON        string
	ResultJSON      string
	ErrorMessage    string
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	FinishedAt      *time.Time
	LastHeartbeat   *time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight stage.
func (j Job) IsProcessing() bool {
	_, ok := processingStatuses[j.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsTerminal reports whether a job has finished, successfully or not.
func (j Job) IsTerminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// SetProgress updates all three progress fields together.
func (j *Job) SetProgress(stage, message string, percent float64) {
	j.ProgressStage = stage
	j.ProgressMessage = message
	j.ProgressPercent = percent
}

// SetFailed marks the job as failed with the given error message and clears
// heartbeat and retry scheduling.
func (j *Job) SetFailed(message string) {
	now := time.Now().UTC()
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.ProgressPercent = 0
	j.ProgressMessage = message
	j.ProgressStage = "Failed"
	j.LastHeartbeat = nil
	j.NextRetryAt = nil
	j.FinishedAt = &now
}

// SetCompleted marks the job as completed with the aggregate result payload.
func (j *Job) SetCompleted(resultJSON string) {
	now := time.Now().UTC()
	j.Status = StatusCompleted
	j.ResultJSON = resultJSON
	j.ErrorMessage = ""
	j.ProgressStage = "Completed"
	j.ProgressMessage = "Completed"
	j.ProgressPercent = 100
	j.LastHeartbeat = nil
	j.NextRetryAt = nil
	j.FinishedAt = &now
}
