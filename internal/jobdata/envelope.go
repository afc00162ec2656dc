package jobdata

import (
	"encoding/json"
	"slices"
	"strings"
)

// Envelope captures the structured payload accumulated as a job moves through
// the pipeline. Each section is written by exactly one stage; see Merge.
type Envelope struct {
	Media      *MediaInfo `json:"media,omitempty"`
	Transcript []Segment  `json:"transcript,omitempty"`
	Scenes     []Scene    `json:"scenes,omitempty"`
	Clips      []Clip     `json:"clips,omitempty"`
	Renders    []Render   `json:"renders,omitempty"`
	Texts      []ClipText `json:"texts,omitempty"`
	Result     *Result    `json:"result,omitempty"`
}

// MediaInfo records the ingested source file and its probed properties.
type MediaInfo struct {
	Path            string  `json:"path"`
	DurationSeconds float64 `json:"duration_seconds"`
	Width           int     `json:"width,omitempty"`
	Height          int     `json:"height,omitempty"`
	AudioPath       string  `json:"audio_path,omitempty"`
}

// Segment is one timed transcript line, ordered by start time. Gaps between
// segments mark silence and are preferred cut points for scene selection.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Scene is a candidate cut range scored by the scene detector.
type Scene struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Score float64 `json:"score,omitempty"`
}

// Clip is one selected short segment within the source timeline. Immutable
// once produced by the rank stage.
type Clip struct {
	ID         string    `json:"id"`
	Start      float64   `json:"start"`
	End        float64   `json:"end"`
	Title      string    `json:"title,omitempty"`
	Transcript []Segment `json:"transcript,omitempty"`
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	return c.End - c.Start
}

// Render associates a clip with its produced artefacts.
type Render struct {
	ClipID      string `json:"clip_id"`
	VideoPath   string `json:"video_path"`
	CaptionPath string `json:"caption_path,omitempty"`
}

// ClipText carries the generated title and description for one clip.
type ClipText struct {
	ClipID      string   `json:"clip_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Hashtags    []string `json:"hashtags,omitempty"`
}

// Result is the aggregate payload stored when a job completes.
type Result struct {
	Clips             []Clip   `json:"clips"`
	Files             []string `json:"files"`
	OutputDir         string   `json:"output_dir"`
	ProcessingSeconds float64  `json:"processing_seconds"`
}

// Parse loads an envelope from JSON, returning an empty envelope on blank input.
func Parse(raw string) (Envelope, error) {
	var env Envelope
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return env, nil
	}
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return Envelope{}, err
	}
	env.Transcript = slices.Clone(env.Transcript)
	env.Scenes = slices.Clone(env.Scenes)
	env.Clips = slices.Clone(env.Clips)
	env.Renders = slices.Clone(env.Renders)
	env.Texts = slices.Clone(env.Texts)
	return env, nil
}

// Encode serializes the envelope for storage in the job record.
func (e Envelope) Encode() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ClipByID returns the clip with the given identifier, if present.
func (e Envelope) ClipByID(id string) (Clip, bool) {
	for _, clip := range e.Clips {
		if clip.ID == id {
			return clip, true
		}
	}
	return Clip{}, false
}

// TranscriptSlice returns the transcript segments overlapping [start, end).
func (e Envelope) TranscriptSlice(start, end float64) []Segment {
	var out []Segment
	for _, seg := range e.Transcript {
		if seg.End <= start || seg.Start >= end {
			continue
		}
		out = append(out, seg)
	}
	return out
}
