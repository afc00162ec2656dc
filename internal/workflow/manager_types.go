package workflow

import (
	"clipforge/internal/queue"
	"clipforge/internal/stage"
)

// StageSet bundles the concrete pipeline handlers the manager orchestrates.
type StageSet struct {
	Ingester      stage.Handler
	Transcriber   stage.Handler
	SceneDetector stage.Handler
	Ranker        stage.Handler
	Renderer      stage.Handler
	TextGenerator stage.Handler
	Exporter      stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// pipelineStages lays out the fixed stage sequence. Each stage claims jobs
// from its start status and hands them to the next stage's start status.
func pipelineStages(set StageSet) []pipelineStage {
	return []pipelineStage{
		{
			name:             "ingest",
			handler:          set.Ingester,
			startStatus:      queue.StatusQueued,
			processingStatus: queue.StatusIngesting,
			doneStatus:       queue.StatusIngested,
		},
		{
			name:             "transcribe",
			handler:          set.Transcriber,
			startStatus:      queue.StatusIngested,
			processingStatus: queue.StatusTranscribing,
			doneStatus:       queue.StatusTranscribed,
		},
		{
			name:             "detect-scenes",
			handler:          set.SceneDetector,
			startStatus:      queue.StatusTranscribed,
			processingStatus: queue.StatusDetectingScenes,
			doneStatus:       queue.StatusScenesDetected,
		},
		{
			name:             "rank",
			handler:          set.Ranker,
			startStatus:      queue.StatusScenesDetected,
			processingStatus: queue.StatusRanking,
			doneStatus:       queue.StatusRanked,
		},
		{
			name:             "render",
			handler:          set.Renderer,
			startStatus:      queue.StatusRanked,
			processingStatus: queue.StatusRendering,
			doneStatus:       queue.StatusRendered,
		},
		{
			name:             "generate-texts",
			handler:          set.TextGenerator,
			startStatus:      queue.StatusRendered,
			processingStatus: queue.StatusGeneratingTexts,
			doneStatus:       queue.StatusTextsGenerated,
		},
		{
			name:             "export",
			handler:          set.Exporter,
			startStatus:      queue.StatusTextsGenerated,
			processingStatus: queue.StatusExporting,
			doneStatus:       queue.StatusCompleted,
		},
	}
}
