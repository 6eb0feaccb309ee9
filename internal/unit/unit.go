// Package unit holds the Unit type: a Position plus a set of Modules
// keyed by kind. A Unit owns its modules exclusively and carries no
// mutex of its own — every field is mutated only while the owning
// Kikan's lock is held, so a second lock here would just be overhead.
package unit

import (
	"github.com/AdonaIsium/kikan/internal/module"
	"github.com/AdonaIsium/kikan/internal/types"
)

// Unit is a single actor occupying one grid cell, with pluggable
// modules (engine, weapon, ...). It is created by the kernel with a
// starting position and a default engine module; its lifetime is the
// lifetime of its kernel entry.
type Unit struct {
	id       types.UnitId
	position types.Position
	modules  map[string]module.Module
}

// New constructs a Unit at pos with the given engine. The engine is
// always registered under module.EngineKind.
func New(id types.UnitId, pos types.Position, engine module.Module) *Unit {
	u := &Unit{
		id:       id,
		position: pos,
		modules:  make(map[string]module.Module, 2),
	}
	u.modules[module.EngineKind] = engine
	return u
}

// ID returns the unit's identifier.
func (u *Unit) ID() types.UnitId {
	return u.id
}

// Position returns the unit's current position.
func (u *Unit) Position() types.Position {
	return u.position
}

// SetPosition overwrites the unit's position. Called only by the
// kernel's move-arbitration step.
func (u *Unit) SetPosition(pos types.Position) {
	u.position = pos
}

// Engine returns the unit's locomotion module. Every unit has one.
func (u *Unit) Engine() module.Module {
	return u.modules[module.EngineKind]
}

// Module looks up a module by kind tag.
func (u *Unit) Module(kind string) (module.Module, bool) {
	m, ok := u.modules[kind]
	return m, ok
}

// SetModule registers (or replaces) a module under kind. Used by
// Kikan.AttachModule to attach plug-in modules to an existing unit.
func (u *Unit) SetModule(kind string, m module.Module) {
	u.modules[kind] = m
}

// Score aggregates the unit's value across all of its modules.
func (u *Unit) Score() uint32 {
	var total uint32
	for _, m := range u.modules {
		total += m.Score()
	}
	return total
}
