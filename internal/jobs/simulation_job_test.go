package jobs_test

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"retail/internal/core/domain/model/kernel"
	"retail/internal/jobs"
	"retail/internal/sim"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(target kernel.Address, command any) {
	m.Called(target, command)
}

type countingSender struct {
	mu   sync.Mutex
	sent int
}

func (c *countingSender) Send(_ kernel.Address, _ any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent++
}

func (c *countingSender) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent
}

func TestBootstrapInitializesEveryCustomer(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send",
		mock.MatchedBy(func(target kernel.Address) bool {
			return target.Kind() == kernel.KindCustomer
		}),
		mock.AnythingOfType("commands.InitializeCommand"),
	).Times(3)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	simulator, err := sim.New(sender, logger, 3, 7)
	require.NoError(t, err)

	simulator.Bootstrap()

	sender.AssertExpectations(t)
}

func TestSimulationJobBootstrapsAndTicks(t *testing.T) {
	sender := &countingSender{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	simulator, err := sim.New(sender, logger, 50, 42)
	require.NoError(t, err)

	manager := jobs.NewJobManager(simulator, 1, logger)
	require.NoError(t, manager.StartAll())
	defer manager.StopAll()

	// Bootstrap alone initializes all 50 customers.
	require.GreaterOrEqual(t, sender.count(), 50)

	// With 50 customers at a 25% placement chance, the first tick generates
	// traffic beyond the bootstrap with near certainty.
	require.Eventually(t, func() bool {
		return sender.count() > 50
	}, 3*time.Second, 50*time.Millisecond)
}
