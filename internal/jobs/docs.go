// Package jobs provides the scheduled background tasks of the retail
// aggregation service.
//
// The single job, SimulationJob, drives the workload simulator on a fixed
// cron schedule using github.com/robfig/cron/v3. Each tick advances every
// simulated customer one step of its order state machine, emitting placement
// and lifecycle-update commands into the substrate.
//
// Jobs are managed through JobManager:
//
//	jobManager := jobs.NewJobManager(simulator, tickSeconds, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
package jobs
