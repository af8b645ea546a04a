package workflow

import (
	"vellum/internal/queue"
	"vellum/internal/stage"
)

// StageSet bundles the concrete pipeline handlers the manager orchestrates.
type StageSet struct {
	Preparer  stage.Handler
	Renderer  stage.Handler
	Deliverer stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

func (m *Manager) stageForStatus(status queue.Status) (pipelineStage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stg, ok := m.stageByStart[status]
	return stg, ok
}

func (m *Manager) configuredStages() []pipelineStage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stages := make([]pipelineStage, len(m.stages))
	copy(stages, m.stages)
	return stages
}

func (m *Manager) reclaimStatuses() []queue.Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.processingStatuses
}
