// Package fabric is the in-process substrate hosting the addressable
// entities. Each entity gets its own executor goroutine and FIFO inbox;
// commands, change notifications and timer callbacks all pass through that
// one inbox, which is what gives every entity its one-at-a-time execution
// model. Cross-entity communication is fire-and-forget: a message that
// cannot be queued is dropped, never blocked on.
package fabric

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"retail/internal/core/domain/model/kernel"
	"retail/internal/core/ports"
)

const defaultInboxSize = 256

// Option configures the fabric.
type Option func(*Fabric)

// WithInboxSize overrides the per-entity inbox capacity.
func WithInboxSize(size int) Option {
	return func(f *Fabric) {
		f.inboxSize = size
	}
}

// Fabric routes commands and notifications between entities, materializing
// entities on demand from the factory registered for their address kind.
// It implements ports.CommandSender and ports.StateReader for the
// outside-in surfaces (HTTP facade, simulator, queries).
type Fabric struct {
	logger    *slog.Logger
	inboxSize int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.RWMutex
	factories map[kernel.Kind]ports.AgentFactory
	entities  map[kernel.Address]*entity
	closed    bool

	subSeq atomic.Uint64
}

// New creates an empty fabric. Entity kinds must be registered before the
// first command addressed to them arrives.
func New(logger *slog.Logger, opts ...Option) *Fabric {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Fabric{
		logger:    logger.With("component", "fabric"),
		inboxSize: defaultInboxSize,
		ctx:       ctx,
		cancel:    cancel,
		factories: make(map[kernel.Kind]ports.AgentFactory),
		entities:  make(map[kernel.Address]*entity),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RegisterKind installs the behavior factory for one entity kind.
func (f *Fabric) RegisterKind(kind kernel.Kind, factory ports.AgentFactory) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.factories[kind] = factory
}

// Send delivers a command to the target entity, creating it on demand.
// Fire and forget: unknown kinds and overflowing inboxes drop the command.
func (f *Fabric) Send(target kernel.Address, command any) {
	e := f.resolve(target)
	if e == nil {
		return
	}
	e.enqueue(envelope{kind: envCommand, command: command})
}

// GetState reads an entity's published lane value. It never materializes
// entities: reading a non-existent entity reports an undefined lane.
func (f *Fabric) GetState(target kernel.Address, lane string) (any, bool) {
	f.mu.RLock()
	e := f.entities[target]
	f.mu.RUnlock()
	if e == nil {
		return nil, false
	}
	return e.readState(lane)
}

// History reads a map lane's entries, oldest first.
func (f *Fabric) History(target kernel.Address, lane string) []ports.HistoryRecord {
	f.mu.RLock()
	e := f.entities[target]
	f.mu.RUnlock()
	if e == nil {
		return nil
	}
	return e.readHistory(lane)
}

// Close stops all entity executors and waits for them to exit. Messages
// still in flight are discarded.
func (f *Fabric) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()

	f.cancel()
	f.wg.Wait()
}

// resolve returns the entity at the given address, materializing it from its
// kind's factory on first use.
func (f *Fabric) resolve(addr kernel.Address) *entity {
	if err := addr.Validate(); err != nil {
		f.logger.Warn("dropping message for invalid address",
			"kind", string(addr.Kind()), "id", addr.ID(), "error", err)
		return nil
	}

	f.mu.RLock()
	e := f.entities[addr]
	f.mu.RUnlock()
	if e != nil {
		return e
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if e = f.entities[addr]; e != nil {
		return e
	}
	if f.closed {
		return nil
	}

	factory, ok := f.factories[addr.Kind()]
	if !ok {
		f.logger.Warn("no factory registered for entity kind", "kind", string(addr.Kind()))
		return nil
	}

	e = newEntity(f, addr)
	e.agent = factory(e)
	f.entities[addr] = e

	f.wg.Add(1)
	go e.run()

	return e
}
