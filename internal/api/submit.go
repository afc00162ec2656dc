package api

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"clipforge/internal/captions"
)

// Submission carries a caller's request to process a video.
type Submission struct {
	JobID          string          `json:"jobId,omitempty"`
	SourceURL      string          `json:"sourceUrl,omitempty"`
	SourceKey      string          `json:"sourceKey,omitempty"`
	TargetDuration int             `json:"targetDurationSeconds,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	Preferences    json.RawMessage `json:"preferences,omitempty"`
}

// ValidationError describes a submission rejected at the boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission: %s %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Validate rejects malformed submissions before they are enqueued. Caption
// preference overrides are checked against the same ranges the renderer
// enforces so bad styles fail synchronously instead of mid-pipeline.
func (s *Submission) Validate(minClipSeconds, maxClipSeconds int) error {
	sourceURL := strings.TrimSpace(s.SourceURL)
	sourceKey := strings.TrimSpace(s.SourceKey)
	switch {
	case sourceURL == "" && sourceKey == "":
		return invalid("source", "requires a source URL or an uploaded object key")
	case sourceURL != "" && sourceKey != "":
		return invalid("source", "must name either a URL or an object key, not both")
	}
	if sourceURL != "" {
		parsed, err := url.Parse(sourceURL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return invalid("sourceUrl", "must be an absolute http or https URL")
		}
	}
	if s.TargetDuration != 0 && (s.TargetDuration < minClipSeconds || s.TargetDuration > maxClipSeconds) {
		return invalid("targetDurationSeconds", fmt.Sprintf("must be between %d and %d", minClipSeconds, maxClipSeconds))
	}
	if len(s.Metadata) > 0 && !json.Valid(s.Metadata) {
		return invalid("metadata", "must be valid JSON")
	}
	if len(s.Preferences) > 0 {
		prefs := captions.DefaultPreferences()
		if err := json.Unmarshal(s.Preferences, &prefs); err != nil {
			return invalid("preferences", "must be a JSON object: "+err.Error())
		}
		if err := prefs.Validate(); err != nil {
			return invalid("preferences", err.Error())
		}
	}
	return nil
}
