// Package engine implements the locomotion module (STE), the canonical
// concrete Module in this codebase, and the MoveCommit it produces.
// Grounded on the original kikan's arsenal/engine.rs: an engine accepts
// a Direction, goes Busy, and emits a commit that resolves ten ticks
// later into a move intent plus a return to Operational.
package engine

import (
	"github.com/AdonaIsium/kikan/internal/config"
	"github.com/AdonaIsium/kikan/internal/kerr"
	"github.com/AdonaIsium/kikan/internal/module"
	"github.com/AdonaIsium/kikan/internal/types"
)

// MoveDelay is the fixed resolve delay of every move commit, in ticks.
const MoveDelay = config.DefaultMoveDelay

// STE is the default locomotion engine. Its zero value is a fresh,
// Operational engine — no constructor is required.
type STE struct {
	inFlight *types.Direction
	offline  bool
}

var _ module.Module = (*STE)(nil)

// Status reports Offline if disabled, Busy if a move commit is in
// flight, else Operational.
func (s *STE) Status() types.Status {
	switch {
	case s.offline:
		return types.Offline
	case s.inFlight != nil:
		return types.Busy
	default:
		return types.Operational
	}
}

// Score is always 0: the engine has no inherent value of its own.
func (s *STE) Score() uint32 {
	return 0
}

// Begin accepts a types.Direction and returns a MoveCommit with a
// fixed ten-tick resolve delay.
func (s *STE) Begin(action module.Action) (module.Commit, error) {
	dir, ok := action.(types.Direction)
	if !ok {
		return nil, kerr.WrongUnitArgs(module.EngineKind)
	}
	switch s.Status() {
	case types.Offline:
		return nil, kerr.ErrModOffline
	case types.Busy:
		return nil, kerr.ErrModBusy
	}
	s.inFlight = &dir
	return newMoveCommit(dir), nil
}

// Complete returns the engine to Operational. Invoked by the
// MoveCommit itself once the move has been arbitrated, regardless of
// whether arbitration admitted the move: Busy models the engine's
// commitment to the plan, not the outcome.
func (s *STE) Complete() error {
	if s.offline {
		return kerr.ErrModOffline
	}
	s.inFlight = nil
	return nil
}

// Disable forces the engine Offline, clearing any in-flight move.
func (s *STE) Disable() error {
	if s.offline {
		return kerr.ErrModOffline
	}
	s.inFlight = nil
	s.offline = true
	return nil
}

// MoveCommit is the deferred effect an engine's Begin produces: on
// apply it looks up the bound unit's current position, computes the
// target cell, registers a move intent for arbitration, and completes
// the engine.
type MoveCommit struct {
	direction types.Direction
	unitID    types.UnitId
}

var _ module.Commit = (*MoveCommit)(nil)

func newMoveCommit(dir types.Direction) *MoveCommit {
	return &MoveCommit{direction: dir}
}

// ResolveDelay is always MoveDelay ticks.
func (c *MoveCommit) ResolveDelay() module.Delay {
	return module.MustDelay(MoveDelay)
}

// Bind associates the commit with its originating unit.
func (c *MoveCommit) Bind(id types.UnitId) {
	c.unitID = id
}

// Apply registers a move intent toward the cell c.direction away from
// the unit's current position, then completes the engine. It fails
// with kerr.ErrGhostUnit if the unit no longer exists.
func (c *MoveCommit) Apply(k module.Kikan) error {
	pos, ok := k.UnitPosition(c.unitID)
	if !ok {
		return kerr.ErrGhostUnit
	}
	target := c.direction.Apply(pos)
	k.RegisterMoveIntent(c.unitID, target)
	return k.CompleteEngine(c.unitID)
}
