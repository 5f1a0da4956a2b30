package fabric

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"retail/internal/core/domain/model/kernel"
	"retail/internal/core/ports"
)

type envelopeKind int

const (
	envCommand envelopeKind = iota
	envNotification
	envTimer
)

// envelope is the single message type flowing through an entity inbox.
type envelope struct {
	kind    envelopeKind
	command any
	note    ports.Notification
	timer   func(ctx context.Context)
}

// valueLane holds one published value slot plus the downlinks watching it.
// Lanes can exist before the value is first set: a subscription to a lane
// nobody has published to yet is valid and simply waits.
type valueLane struct {
	value       any
	defined     bool
	subscribers map[ports.SubscriptionID]*entity
}

// subscription remembers where a downlink opened by this entity points, so
// Unsubscribe can detach it from the target lane.
type subscription struct {
	target *entity
	lane   string
}

// entity is one addressable unit of state and behavior. All agent callbacks
// run on the entity's own executor goroutine; lane maps are additionally
// guarded by lmu because external readers and publishing peers touch them
// from other goroutines.
type entity struct {
	fab    *Fabric
	addr   kernel.Address
	agent  ports.Agent
	inbox  chan envelope
	logger *slog.Logger

	lmu    sync.RWMutex
	values map[string]*valueLane
	logs   map[string][]ports.HistoryRecord

	// subs is touched only from this entity's executor.
	subs map[ports.SubscriptionID]subscription
}

func newEntity(f *Fabric, addr kernel.Address) *entity {
	return &entity{
		fab:    f,
		addr:   addr,
		inbox:  make(chan envelope, f.inboxSize),
		logger: f.logger.With("entity", addr.String()),
		values: make(map[string]*valueLane),
		logs:   make(map[string][]ports.HistoryRecord),
		subs:   make(map[ports.SubscriptionID]subscription),
	}
}

// run is the executor loop. DidStart fires before the first inbox message is
// dispatched; commands sent while the entity was being materialized wait in
// the buffer.
func (e *entity) run() {
	defer e.fab.wg.Done()

	ctx := e.fab.ctx
	e.agent.DidStart(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case env := <-e.inbox:
			e.dispatch(ctx, env)
		}
	}
}

func (e *entity) dispatch(ctx context.Context, env envelope) {
	switch env.kind {
	case envCommand:
		e.agent.HandleCommand(ctx, env.command)
	case envNotification:
		e.agent.HandleNotification(ctx, env.note)
	case envTimer:
		env.timer(ctx)
	}
}

// enqueue never blocks. An entity that cannot keep up loses messages rather
// than stalling its peers.
func (e *entity) enqueue(env envelope) {
	select {
	case e.inbox <- env:
	default:
		e.logger.Warn("inbox full, dropping message")
	}
}

func (e *entity) readState(lane string) (any, bool) {
	e.lmu.RLock()
	defer e.lmu.RUnlock()

	ln := e.values[lane]
	if ln == nil || !ln.defined {
		return nil, false
	}
	return ln.value, true
}

func (e *entity) readHistory(lane string) []ports.HistoryRecord {
	e.lmu.RLock()
	defer e.lmu.RUnlock()

	log := e.logs[lane]
	if len(log) == 0 {
		return nil
	}
	out := make([]ports.HistoryRecord, len(log))
	copy(out, log)
	return out
}

func (e *entity) lane(name string) *valueLane {
	ln := e.values[name]
	if ln == nil {
		ln = &valueLane{subscribers: make(map[ports.SubscriptionID]*entity)}
		e.values[name] = ln
	}
	return ln
}

// ports.AgentRuntime implementation. These are called from the owning
// agent's callbacks, i.e. on this entity's executor goroutine.

func (e *entity) Address() kernel.Address {
	return e.addr
}

func (e *entity) SetState(lane string, value any) {
	e.lmu.Lock()
	ln := e.lane(lane)
	ln.value = value
	ln.defined = value != nil
	watchers := make([]*entity, 0, len(ln.subscribers))
	for _, w := range ln.subscribers {
		watchers = append(watchers, w)
	}
	e.lmu.Unlock()

	note := ports.Notification{Source: e.addr, Lane: lane, Value: value}
	for _, w := range watchers {
		w.enqueue(envelope{kind: envNotification, note: note})
	}
}

func (e *entity) GetState(lane string) (any, bool) {
	return e.readState(lane)
}

func (e *entity) AppendHistory(lane string, timestamp int64, value string) {
	e.lmu.Lock()
	defer e.lmu.Unlock()
	e.logs[lane] = append(e.logs[lane], ports.HistoryRecord{Timestamp: timestamp, Value: value})
}

// Subscribe opens a downlink to the target entity's lane, materializing the
// target on demand. If the lane already carries a value, that value is
// replayed to this entity as an ordinary notification so the subscriber
// never misses the current state.
func (e *entity) Subscribe(target kernel.Address, lane string) ports.SubscriptionID {
	t := e.fab.resolve(target)
	if t == nil {
		return 0
	}

	id := ports.SubscriptionID(e.fab.subSeq.Add(1))

	t.lmu.Lock()
	ln := t.lane(lane)
	ln.subscribers[id] = e
	// Replay while still holding the target's lock. A publish racing this
	// subscribe would otherwise register the subscriber, deliver the newer
	// value, and only then let the stale replay land on top of it. The
	// enqueue never blocks, so holding lmu here is safe.
	if ln.defined {
		e.enqueue(envelope{
			kind: envNotification,
			note: ports.Notification{Source: target, Lane: lane, Value: ln.value},
		})
	}
	t.lmu.Unlock()

	e.subs[id] = subscription{target: t, lane: lane}
	return id
}

func (e *entity) Unsubscribe(id ports.SubscriptionID) {
	sub, ok := e.subs[id]
	if !ok {
		return
	}
	delete(e.subs, id)

	sub.target.lmu.Lock()
	if ln := sub.target.values[sub.lane]; ln != nil {
		delete(ln.subscribers, id)
	}
	sub.target.lmu.Unlock()
}

func (e *entity) Send(target kernel.Address, command any) {
	e.fab.Send(target, command)
}

// ScheduleAfter runs fn on this entity's executor after the delay. Timers
// firing after shutdown are discarded.
func (e *entity) ScheduleAfter(d time.Duration, fn func(ctx context.Context)) {
	time.AfterFunc(d, func() {
		select {
		case <-e.fab.ctx.Done():
			return
		default:
		}
		e.enqueue(envelope{kind: envTimer, timer: fn})
	})
}
