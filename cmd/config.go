package cmd

// Config carries the service configuration loaded from the environment.
type Config struct {
	HTTPPort string

	// StrictAdvance rejects explicit order updates that would move an order
	// backward in its lifecycle.
	StrictAdvance bool

	// SimEnabled turns on the workload simulator job.
	SimEnabled      bool
	SimCustomers    int
	SimSeed         int64
	SimTickSeconds  int
	OrderSimEnabled bool
}
