package jobs

import (
	"fmt"
	"log/slog"

	"retail/internal/sim"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	simulationJob *SimulationJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(simulator *sim.Simulator, tickSeconds int, logger *slog.Logger) *JobManager {
	return &JobManager{
		simulationJob: NewSimulationJob(simulator, tickSeconds, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.simulationJob.Start(); err != nil {
		return fmt.Errorf("failed to start simulation job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.simulationJob.Stop()
}
