// Package kikan implements the simulation kernel: the unit registry, the
// commit scheduling ring, the tick driver, move-arbitration, and the
// update broadcast. Grounded on the teacher's UnitManager pattern (its
// internal/units/manager.go, not carried into this repository:
// RWMutex-guarded map, non-blocking observer broadcast, context-free
// synchronous operations) adapted to the spec's single-global-lock
// model: unlike UnitManager, Kikan has no background goroutines, no
// worker pool, and no per-operation fan-out — every exported method
// except the three unlocked module.Kikan methods (UnitPosition,
// RegisterMoveIntent, CompleteEngine) acquires mu, does its work
// synchronously, and returns. The only suspension point in the whole package is
// Subscription.Wait, reached after the lock has been released.
package kikan

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/AdonaIsium/kikan/internal/bus"
	"github.com/AdonaIsium/kikan/internal/engine"
	"github.com/AdonaIsium/kikan/internal/kerr"
	"github.com/AdonaIsium/kikan/internal/klog"
	"github.com/AdonaIsium/kikan/internal/module"
	"github.com/AdonaIsium/kikan/internal/telemetry"
	"github.com/AdonaIsium/kikan/internal/types"
	"github.com/AdonaIsium/kikan/internal/unit"
	"github.com/AdonaIsium/kikan/internal/weapon"

	"sync"
)

// StartPosFunc generates a candidate starting position for a new unit.
// It is not required to return a vacant position; AddUnit still checks
// for occupancy.
type StartPosFunc func() types.Position

// Kikan is the simulation kernel: a unit registry plus a commit ring,
// guarded by a single mutex per spec.md §5. No kernel operation may
// suspend while mu is held; wait_for_update's blocking half (see
// WaitForUpdate) happens strictly after mu is released.
type Kikan struct {
	mu sync.Mutex

	nextID      types.UnitId
	units       map[types.UnitId]*unit.Unit
	commits     [][]module.Commit
	moveIntents map[types.UnitId]types.Position

	startPos StartPosFunc
	registry *module.Registry
	bus      *bus.Bus

	log     *zap.Logger
	metrics *telemetry.Metrics
}

var _ module.Kikan = (*Kikan)(nil)

// Option configures a Kikan at construction time.
type Option func(*Kikan)

// WithLogger overrides the kernel's logger, zap.NewNop by default.
func WithLogger(log *zap.Logger) Option {
	return func(k *Kikan) { k.log = log }
}

// WithMetrics overrides the kernel's metrics sink, a no-op by default.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(k *Kikan) { k.metrics = m }
}

// WithUpdateBacklog overrides the update bus's per-subscriber backlog
// depth, config.DefaultUpdateBacklog by default.
func WithUpdateBacklog(backlog int) Option {
	return func(k *Kikan) { k.bus = bus.NewWithBacklog(backlog) }
}

// WithModuleKinds extends the kernel's module registry with additional
// plug-in kinds beyond the built-in engine and kinetic weapon.
func WithModuleKinds(kinds ...string) Option {
	return func(k *Kikan) {
		all := append([]string{weapon.Kind}, kinds...)
		k.registry = module.NewRegistry(all...)
	}
}

// New constructs a Kikan with the given start-position generator and no
// units. The commit ring starts at its minimum length of one empty
// bucket.
func New(startPos StartPosFunc, opts ...Option) *Kikan {
	k := &Kikan{
		units:       make(map[types.UnitId]*unit.Unit),
		commits:     make([][]module.Commit, 1),
		moveIntents: make(map[types.UnitId]types.Position),
		startPos:    startPos,
		registry:    module.NewRegistry(weapon.Kind),
		bus:         bus.New(),
		log:         klog.Nop(),
		metrics:     telemetry.Noop(),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// AddUnit inserts a fresh unit with a default engine at pos, failing
// kerr.ErrAlreadyUnitHere if pos is already occupied.
func (k *Kikan) AddUnit(pos types.Position) (types.UnitId, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, u := range k.units {
		if u.Position() == pos {
			return 0, kerr.ErrAlreadyUnitHere
		}
	}

	id := k.nextID
	k.nextID++
	k.units[id] = unit.New(id, pos, &engine.STE{})
	k.metrics.RecordUnitAdded(context.Background())
	k.log.Debug("unit added", zap.Uint64("unit_id", uint64(id)), zap.Int("x", pos.X), zap.Int("y", pos.Y))
	return id, nil
}

// GenStartPos invokes the configured generator. The result is not
// guaranteed vacant; compose with AddUnit's own occupancy check.
func (k *Kikan) GenStartPos() types.Position {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.startPos()
}

// GetUnitPosition reads a unit's current position under lock.
func (k *Kikan) GetUnitPosition(id types.UnitId) (types.Position, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.UnitPosition(id)
}

// UnitPosition is the unlocked accessor satisfying module.Kikan, called
// from within Tick while mu is already held — it must never lock.
func (k *Kikan) UnitPosition(id types.UnitId) (types.Position, bool) {
	u, ok := k.units[id]
	if !ok {
		return types.Position{}, false
	}
	return u.Position(), true
}

// RegisterMoveIntent is the unlocked move-intent setter satisfying
// module.Kikan, called only from a Commit's Apply during Tick.
func (k *Kikan) RegisterMoveIntent(id types.UnitId, next types.Position) {
	k.moveIntents[id] = next
}

// CompleteEngine invokes a unit's engine module's Complete, satisfying
// module.Kikan. Called only from a Commit's Apply during Tick.
func (k *Kikan) CompleteEngine(id types.UnitId) error {
	u, ok := k.units[id]
	if !ok {
		return kerr.ErrGhostUnit
	}
	return u.Engine().Complete()
}

// PlanUnitMove begins a move on id's engine and enqueues the resulting
// commit. Fails kerr.ErrGhostUnit if id is unknown, or whatever begin
// itself fails with (kerr.ErrModBusy, kerr.ErrModOffline).
func (k *Kikan) PlanUnitMove(id types.UnitId, dir types.Direction) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	u, ok := k.units[id]
	if !ok {
		return kerr.ErrGhostUnit
	}
	c, err := u.Engine().Begin(dir)
	if err != nil {
		return err
	}
	c.Bind(id)
	k.enqueueCommit(c)
	return nil
}

// UnitModAction dispatches action to the module registered under kind
// on unit id. Fails kerr.ErrGhostUnit, kerr.MissingUnitMod (kind
// unrecognized kernel-wide), kerr.MissingUnitPart (unit lacks that
// module), or whatever the module's own Begin fails with.
func (k *Kikan) UnitModAction(id types.UnitId, kind string, action module.Action) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	u, ok := k.units[id]
	if !ok {
		return kerr.ErrGhostUnit
	}
	if !k.registry.Recognizes(kind) {
		return kerr.MissingUnitMod(kind)
	}
	m, ok := u.Module(kind)
	if !ok {
		return kerr.MissingUnitPart(kind)
	}
	c, err := m.Begin(action)
	if err != nil {
		return err
	}
	c.Bind(id)
	k.enqueueCommit(c)
	return nil
}

// AttachModule registers m under kind on unit id, replacing any module
// already registered there. Not named in the embedded scripting API
// (§6 only exposes mod_on against modules a unit already has); it is
// the missing piece that lets a builder or a test give a unit a
// kinetic weapon (or any other plug-in kind) before issuing actions
// against it. Fails kerr.ErrGhostUnit or kerr.MissingUnitMod if kind
// isn't registered with this kernel at all.
func (k *Kikan) AttachModule(id types.UnitId, kind string, m module.Module) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	u, ok := k.units[id]
	if !ok {
		return kerr.ErrGhostUnit
	}
	if !k.registry.Recognizes(kind) {
		return kerr.MissingUnitMod(kind)
	}
	u.SetModule(kind, m)
	return nil
}

// IsUnitMoving reports whether id's engine module is Busy.
func (k *Kikan) IsUnitMoving(id types.UnitId) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	u, ok := k.units[id]
	if !ok {
		return false, kerr.ErrGhostUnit
	}
	return u.Engine().Status().IsBusy(), nil
}

// WaitForUpdate subscribes to the update bus under lock and returns
// immediately; the caller blocks on the returned Subscription's Wait
// after releasing any lock of its own. Kikan never blocks inside this
// call — see internal/handler for the acquire/subscribe/release/block
// sequencing this enables.
func (k *Kikan) WaitForUpdate() *bus.Subscription {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.bus.Subscribe()
}

// enqueueCommit writes c into the ring at its resolve delay, growing the
// ring on demand. A commit enqueued with delay d is applied on the d-th
// Tick from now: Tick pops bucket 0 before applying it, so a delay of d
// lands at index d-1, not d (a delay of 1 resolves on the very next
// Tick, at index 0). Must be called with mu held.
func (k *Kikan) enqueueCommit(c module.Commit) {
	idx := int(c.ResolveDelay()) - 1
	for len(k.commits) <= idx {
		k.commits = append(k.commits, nil)
	}
	k.commits[idx] = append(k.commits[idx], c)
}

// Tick pops the due commit bucket, applies each commit in insertion
// order, arbitrates the resulting move intents, and broadcasts a tick
// signal. It returns the first error encountered while applying commits,
// if any; subsequent errors in the same bucket are logged and dropped
// (spec.md §7, §9 open question). Arbitration cannot fail and always
// runs, even for an empty bucket.
func (k *Kikan) Tick() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	bucket := k.commits[0]
	k.commits = k.commits[1:]
	if len(k.commits) == 0 {
		k.commits = append(k.commits, nil)
	}

	var firstErr error
	for _, c := range bucket {
		if err := c.Apply(k); err != nil {
			k.log.Warn("commit apply failed", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	admitted := k.arbitrate()
	k.metrics.RecordTick(context.Background(), len(bucket), admitted)
	k.bus.Broadcast()
	return firstErr
}

// arbitrate resolves move_intents against every unit's current position,
// admitting a destination iff exactly one unit claims it, then clears
// move_intents. Must be called with mu held. Returns the number of
// moves admitted.
func (k *Kikan) arbitrate() int {
	claims := make(map[types.Position]types.UnitId, len(k.moveIntents))
	admitted := make(map[types.UnitId]struct{}, len(k.moveIntents))

	for id, u := range k.units {
		next, ok := k.moveIntents[id]
		if !ok {
			next = u.Position()
		}
		if prev, exists := claims[next]; exists {
			delete(admitted, prev)
		} else {
			claims[next] = id
			admitted[id] = struct{}{}
		}
	}

	moves := 0
	for next, id := range claims {
		if _, ok := admitted[id]; ok {
			if _, moved := k.moveIntents[id]; moved {
				moves++
			}
			k.units[id].SetPosition(next)
		}
	}

	k.moveIntents = make(map[types.UnitId]types.Position)
	return moves
}

// String renders the kernel's unit count and current ring depth, useful
// in driver logging.
func (k *Kikan) String() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return fmt.Sprintf("Kikan{units=%d, ring_depth=%d}", len(k.units), len(k.commits))
}
