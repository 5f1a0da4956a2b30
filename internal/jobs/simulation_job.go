package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"retail/internal/sim"

	"github.com/robfig/cron/v3"
)

// SimulationJob drives the workload simulator on a fixed schedule. The
// simulator itself is not safe for concurrent use, so ticks are serialized:
// a tick that would overlap a still-running one waits for it.
type SimulationJob struct {
	simulator   *sim.Simulator
	tickSeconds int
	cron        *cron.Cron
	logger      *slog.Logger

	mu sync.Mutex
}

// NewSimulationJob creates a job stepping the given simulator every
// tickSeconds seconds.
func NewSimulationJob(simulator *sim.Simulator, tickSeconds int, logger *slog.Logger) *SimulationJob {
	if tickSeconds <= 0 {
		tickSeconds = 1
	}
	return &SimulationJob{
		simulator:   simulator,
		tickSeconds: tickSeconds,
		cron:        cron.New(cron.WithSeconds()),
		logger:      logger.With("component", "simulation_job"),
	}
}

// Start bootstraps the customer population and begins ticking.
func (j *SimulationJob) Start() error {
	j.simulator.Bootstrap()

	_, err := j.cron.AddFunc(fmt.Sprintf("@every %ds", j.tickSeconds), func() {
		j.mu.Lock()
		defer j.mu.Unlock()
		j.simulator.Step()
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Simulation job started",
		"tick_seconds", j.tickSeconds)
	return nil
}

// Stop stops the simulation job.
func (j *SimulationJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Simulation job stopped")
}
