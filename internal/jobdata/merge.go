package jobdata

import "fmt"

// Stage names as recorded by the workflow manager.
const (
	StageIngest        = "ingest"
	StageTranscribe    = "transcribe"
	StageDetectScenes  = "detect-scenes"
	StageRank          = "rank"
	StageRender        = "render"
	StageGenerateTexts = "generate-texts"
	StageExport        = "export"
)

type section int

const (
	sectionMedia section = iota
	sectionTranscript
	sectionScenes
	sectionClips
	sectionRenders
	sectionTexts
	sectionResult
)

var sectionNames = map[section]string{
	sectionMedia:      "media",
	sectionTranscript: "transcript",
	sectionScenes:     "scenes",
	sectionClips:      "clips",
	sectionRenders:    "renders",
	sectionTexts:      "texts",
	sectionResult:     "result",
}

// stageOwnership maps each stage to the single envelope section it may write.
var stageOwnership = map[string]section{
	StageIngest:        sectionMedia,
	StageTranscribe:    sectionTranscript,
	StageDetectScenes:  sectionScenes,
	StageRank:          sectionClips,
	StageRender:        sectionRenders,
	StageGenerateTexts: sectionTexts,
	StageExport:        sectionResult,
}

// Merge copies the populated sections of patch into the envelope, enforcing
// that stage only writes the section it owns. Writing any other populated
// section is an error, as is the owning stage leaving its own section empty.
func (e *Envelope) Merge(stage string, patch Envelope) error {
	owned, ok := stageOwnership[stage]
	if !ok {
		return fmt.Errorf("merge: unknown stage %q", stage)
	}
	for sec, populated := range patchSections(patch) {
		if !populated {
			continue
		}
		if sec != owned {
			return fmt.Errorf("merge: stage %s may not write %s (owned by %s)", stage, sectionNames[sec], ownerOf(sec))
		}
	}
	switch owned {
	case sectionMedia:
		if patch.Media == nil {
			return fmt.Errorf("merge: stage %s produced no media", stage)
		}
		e.Media = patch.Media
	case sectionTranscript:
		if len(patch.Transcript) == 0 {
			return fmt.Errorf("merge: stage %s produced no transcript", stage)
		}
		e.Transcript = patch.Transcript
	case sectionScenes:
		if len(patch.Scenes) == 0 {
			return fmt.Errorf("merge: stage %s produced no scenes", stage)
		}
		e.Scenes = patch.Scenes
	case sectionClips:
		if len(patch.Clips) == 0 {
			return fmt.Errorf("merge: stage %s produced no clips", stage)
		}
		e.Clips = patch.Clips
	case sectionRenders:
		if len(patch.Renders) == 0 {
			return fmt.Errorf("merge: stage %s produced no renders", stage)
		}
		e.Renders = patch.Renders
	case sectionTexts:
		if len(patch.Texts) == 0 {
			return fmt.Errorf("merge: stage %s produced no texts", stage)
		}
		e.Texts = patch.Texts
	case sectionResult:
		if patch.Result == nil {
			return fmt.Errorf("merge: stage %s produced no result", stage)
		}
		e.Result = patch.Result
	}
	return nil
}

func patchSections(patch Envelope) map[section]bool {
	return map[section]bool{
		sectionMedia:      patch.Media != nil,
		sectionTranscript: len(patch.Transcript) > 0,
		sectionScenes:     len(patch.Scenes) > 0,
		sectionClips:      len(patch.Clips) > 0,
		sectionRenders:    len(patch.Renders) > 0,
		sectionTexts:      len(patch.Texts) > 0,
		sectionResult:     patch.Result != nil,
	}
}

func ownerOf(sec section) string {
	for stage, owned := range stageOwnership {
		if owned == sec {
			return stage
		}
	}
	return "unknown"
}
