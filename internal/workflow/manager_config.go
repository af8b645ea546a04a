package workflow

import "vellum/internal/queue"

// ConfigureStages registers the concrete stage handlers the workflow will run.
// Each stage picks items up in the status the previous stage left them in, so
// a partially configured set simply stops advancing items at the gap.
func (m *Manager) ConfigureStages(set StageSet) {
	stages := make([]pipelineStage, 0, 3)
	if set.Preparer != nil {
		stages = append(stages, pipelineStage{
			name:             "preparer",
			handler:          set.Preparer,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusPreparing,
			doneStatus:       queue.StatusPrepared,
		})
	}
	if set.Renderer != nil {
		stages = append(stages, pipelineStage{
			name:             "renderer",
			handler:          set.Renderer,
			startStatus:      queue.StatusPrepared,
			processingStatus: queue.StatusRendering,
			doneStatus:       queue.StatusRendered,
		})
	}
	if set.Deliverer != nil {
		stages = append(stages, pipelineStage{
			name:             "deliverer",
			handler:          set.Deliverer,
			startStatus:      queue.StatusRendered,
			processingStatus: queue.StatusDelivering,
			doneStatus:       queue.StatusCompleted,
		})
	}

	byStart := make(map[queue.Status]pipelineStage, len(stages))
	order := make([]queue.Status, 0, len(stages))
	processing := make([]queue.Status, 0, len(stages))
	for _, stg := range stages {
		byStart[stg.startStatus] = stg
		order = append(order, stg.startStatus)
		processing = append(processing, stg.processingStatus)
	}

	m.mu.Lock()
	m.stages = stages
	m.stageByStart = byStart
	m.statusOrder = order
	m.processingStatuses = processing
	m.mu.Unlock()
}
