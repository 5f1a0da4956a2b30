package cmd

import (
	"fmt"
	"log/slog"
	"os"

	httpin "retail/internal/adapters/in/http"
	"retail/internal/adapters/out/fabric"
	"retail/internal/core/application/agents"
	"retail/internal/core/application/usecases/queries"
	"retail/internal/core/domain/model/kernel"
	"retail/internal/jobs"
	"retail/internal/sim"
)

// CompositionRoot wires the substrate, the entity behaviors, the optional
// workload simulator and the query side together.
type CompositionRoot struct {
	logger *slog.Logger
	fabric *fabric.Fabric

	jobManager *jobs.JobManager
}

// NewCompositionRoot builds the application object graph from the given
// configuration.
func NewCompositionRoot(config Config) (*CompositionRoot, error) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	f := fabric.New(logger)

	var orderOpts []agents.OrderOption
	if config.StrictAdvance {
		orderOpts = append(orderOpts, agents.WithStrictOrderAdvance())
	}
	f.RegisterKind(kernel.KindOrder, agents.NewOrderAgentFactory(logger, orderOpts...))
	f.RegisterKind(kernel.KindCustomer, agents.NewCustomerAgentFactory(logger))
	f.RegisterKind(kernel.KindStore, agents.NewStoreAgentFactory(logger))

	root := &CompositionRoot{
		logger: logger,
		fabric: f,
	}

	if config.SimEnabled {
		var simOpts []sim.Option
		if config.OrderSimEnabled {
			simOpts = append(simOpts, sim.WithSelfProgression())
		}

		simulator, err := sim.New(f, logger, config.SimCustomers, config.SimSeed, simOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to build simulator: %w", err)
		}
		root.jobManager = jobs.NewJobManager(simulator, config.SimTickSeconds, logger)
	}

	return root, nil
}

// Logger returns the root logger.
func (c *CompositionRoot) Logger() *slog.Logger {
	return c.logger
}

// StartJobs starts the background jobs, if any are configured.
func (c *CompositionRoot) StartJobs() error {
	if c.jobManager == nil {
		return nil
	}
	return c.jobManager.StartAll()
}

// Close stops the background jobs and shuts the substrate down.
func (c *CompositionRoot) Close() {
	if c.jobManager != nil {
		c.jobManager.StopAll()
	}
	c.fabric.Close()
}

// CreateHTTPServer builds the inbound HTTP facade over the substrate.
func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.fabric,
		c.CreateGetCustomerStatusQueryHandler(),
		c.CreateGetStoreStatusQueryHandler(),
		c.CreateGetOrderStatusQueryHandler(),
		c.CreateGetOrderHistoryQueryHandler(),
	)
}

func (c *CompositionRoot) CreateGetCustomerStatusQueryHandler() queries.GetCustomerStatusQueryHandler {
	return queries.NewGetCustomerStatusQueryHandler(c.fabric)
}

func (c *CompositionRoot) CreateGetStoreStatusQueryHandler() queries.GetStoreStatusQueryHandler {
	return queries.NewGetStoreStatusQueryHandler(c.fabric)
}

func (c *CompositionRoot) CreateGetOrderStatusQueryHandler() queries.GetOrderStatusQueryHandler {
	return queries.NewGetOrderStatusQueryHandler(c.fabric)
}

func (c *CompositionRoot) CreateGetOrderHistoryQueryHandler() queries.GetOrderHistoryQueryHandler {
	return queries.NewGetOrderHistoryQueryHandler(c.fabric)
}
