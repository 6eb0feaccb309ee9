// Package module defines the two open-ended contracts every unit part
// implements (Module) and every deferred effect implements (Commit),
// plus the registry that lets the kernel dispatch to plug-in module
// kinds by name without knowing their concrete type.
//
// Module and Commit are interfaces on purpose: the engine (locomotion)
// and kinetic-weapon modules in this repo are two concrete instances,
// but neither the kernel nor the handler facade needs to know about
// any concrete module to drive one.
package module

import (
	"errors"

	"github.com/AdonaIsium/kikan/internal/types"
)

// ErrNonPositiveDelay is returned by NewDelay when ticks is 0.
var ErrNonPositiveDelay = errors.New("module: resolve delay must be >= 1")

// Action is the payload a caller passes to Module.Begin. Each concrete
// module defines what it expects to find inside (a types.Direction for
// the engine, a weapon.Action with target and distance for the kinetic
// weapon, ...) and
// returns kerr.WrongUnitArgs if the type assertion fails.
type Action interface{}

// Kikan is the narrow slice of the kernel a Commit needs to apply
// itself. It is satisfied by *kikan.Kikan; defined here (rather than
// imported from package kikan) to avoid a cycle, since the kernel must
// import this package to hold Modules and Commits.
type Kikan interface {
	UnitPosition(id types.UnitId) (types.Position, bool)
	RegisterMoveIntent(id types.UnitId, next types.Position)
	CompleteEngine(id types.UnitId) error
}

// EngineKind is the reserved module kind every unit is constructed
// with; Kikan.PlanUnitMove and Kikan.IsUnitMoving always target it.
const EngineKind = "engine"

// Module is the contract every unit part (engine, weapon, ...)
// implements. A module is owned exclusively by its unit; its fields
// are mutated only while the kernel's lock is held, so it needs no
// mutex of its own.
type Module interface {
	// Status reports the module's current lifecycle state.
	Status() types.Status

	// Score contributes to the unit's aggregate value. A module with
	// no notion of value returns 0.
	Score() uint32

	// Begin accepts action, transitions Operational -> Busy, and
	// returns a freshly constructed, as-yet-unbound Commit describing
	// the deferred effect. Fails with kerr.ErrModBusy or
	// kerr.ErrModOffline depending on the module's current status, or
	// kerr.WrongUnitArgs if action's type doesn't match what this
	// module expects.
	Begin(action Action) (Commit, error)

	// Complete transitions Busy -> Operational. Fails with
	// kerr.ErrModOffline if the module is Offline.
	Complete() error

	// Disable forces the module Offline and clears any in-flight
	// action. Fails with kerr.ErrModOffline if already Offline.
	Disable() error
}

// Delay is a strictly positive tick offset. The zero value is not a
// valid Delay; use NewDelay to construct one.
type Delay uint

// NewDelay constructs a Delay, rejecting non-positive values so that
// "resolve_delay >= 1" can never be violated by construction.
func NewDelay(ticks uint) (Delay, error) {
	if ticks == 0 {
		return 0, ErrNonPositiveDelay
	}
	return Delay(ticks), nil
}

// MustDelay is NewDelay for compile-time-known positive constants.
func MustDelay(ticks uint) Delay {
	d, err := NewDelay(ticks)
	if err != nil {
		panic(err)
	}
	return d
}

// Commit is a deferred effect scheduled for resolution some number of
// ticks after it was enqueued. The kernel's commit ring owns a Commit
// exclusively between enqueue and apply; once Apply returns the commit
// is dropped.
type Commit interface {
	// ResolveDelay is the tick offset, from enqueue time, at which the
	// kernel will invoke Apply. Always >= 1.
	ResolveDelay() Delay

	// Bind associates the commit with the unit that issued it. Called
	// exactly once, before the commit is enqueued.
	Bind(id types.UnitId)

	// Apply is invoked when the commit comes due. It may mutate the
	// kernel (through the narrow Kikan interface above), may register a
	// move intent for arbitration, and may fail — most commonly with
	// kerr.ErrGhostUnit if the bound unit no longer exists.
	Apply(k Kikan) error
}

// Registry maps a module kind tag to whether the kernel recognizes it
// at all, independent of whether any particular unit has one. It lets
// Kikan.UnitModAction distinguish "this unit has no weapon" (
// kerr.MissingUnitPart) from "there is no such thing as a 'warp'
// module" (kerr.MissingUnitMod).
type Registry struct {
	kinds map[string]struct{}
}

// NewRegistry builds a Registry recognizing exactly the given kinds.
// EngineKind is always included.
func NewRegistry(kinds ...string) *Registry {
	r := &Registry{kinds: make(map[string]struct{}, len(kinds)+1)}
	r.kinds[EngineKind] = struct{}{}
	for _, k := range kinds {
		r.kinds[k] = struct{}{}
	}
	return r
}

// Recognizes reports whether kind is a module kind the kernel knows
// about at all.
func (r *Registry) Recognizes(kind string) bool {
	_, ok := r.kinds[kind]
	return ok
}
