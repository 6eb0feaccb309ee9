// Package weapon implements the kinetic weapon module: a plug-in
// example demonstrating that Module and Commit are polymorphic and
// that a commit's resolve delay need not be a fixed constant. Grounded
// on the original kikan's arsenal/kinetic_weapon.rs. The kernel's
// damage/health model is out of scope (spec.md §4.4): Apply is a
// placeholder that always succeeds.
package weapon

import (
	"github.com/AdonaIsium/kikan/internal/kerr"
	"github.com/AdonaIsium/kikan/internal/module"
	"github.com/AdonaIsium/kikan/internal/types"
)

// Kind is the module kind tag kinetic weapons register under.
const Kind = "weapon"

// DelayFunc computes a resolve delay, in ticks, from a target
// distance. It must return a positive value; Begin falls back to a
// delay of 1 if it doesn't.
type DelayFunc func(distance uint) uint

// Action is the payload KineticWeapon.Begin expects.
type Action struct {
	Target   types.Position
	Distance uint
	Damage   uint32
}

// KineticWeapon is a weapon module whose resolve delay scales with the
// configured DelayFunc rather than being fixed, unlike the engine's.
type KineticWeapon struct {
	delay    DelayFunc
	inFlight bool
	offline  bool
}

var _ module.Module = (*KineticWeapon)(nil)

// New constructs a KineticWeapon using delay to compute resolve delays
// from target distance.
func New(delay DelayFunc) *KineticWeapon {
	return &KineticWeapon{delay: delay}
}

func (w *KineticWeapon) Status() types.Status {
	switch {
	case w.offline:
		return types.Offline
	case w.inFlight:
		return types.Busy
	default:
		return types.Operational
	}
}

// Score is always 0: no damage/health model is wired up.
func (w *KineticWeapon) Score() uint32 {
	return 0
}

func (w *KineticWeapon) Begin(action module.Action) (module.Commit, error) {
	a, ok := action.(Action)
	if !ok {
		return nil, kerr.WrongUnitArgs(Kind)
	}
	switch w.Status() {
	case types.Offline:
		return nil, kerr.ErrModOffline
	case types.Busy:
		return nil, kerr.ErrModBusy
	}
	w.inFlight = true
	delay, err := module.NewDelay(w.delay(a.Distance))
	if err != nil {
		delay = module.MustDelay(1)
	}
	return &KineticWeaponCommit{weapon: w, delay: delay, target: a.Target, damage: a.Damage}, nil
}

func (w *KineticWeapon) Complete() error {
	if w.offline {
		return kerr.ErrModOffline
	}
	w.inFlight = false
	return nil
}

func (w *KineticWeapon) Disable() error {
	if w.offline {
		return kerr.ErrModOffline
	}
	w.inFlight = false
	w.offline = true
	return nil
}

// KineticWeaponCommit carries a target and damage amount; its Apply has
// no kernel-visible effect beyond returning the weapon to Operational,
// since no damage/health model is wired into the kernel. It binds no
// unit id, but still holds the weapon it was begun from so it can
// complete it.
type KineticWeaponCommit struct {
	weapon *KineticWeapon
	delay  module.Delay
	target types.Position
	damage uint32
}

var _ module.Commit = (*KineticWeaponCommit)(nil)

func (c *KineticWeaponCommit) ResolveDelay() module.Delay {
	return c.delay
}

// Bind is a no-op: this commit carries no unit id.
func (c *KineticWeaponCommit) Bind(types.UnitId) {}

// Apply returns the originating weapon to Operational and always
// succeeds; a weapon that was disabled while the commit was in flight
// is left Offline. The kernel has no damage/health model, so this is
// the commit's only effect.
func (c *KineticWeaponCommit) Apply(module.Kikan) error {
	if c.weapon.Status() == types.Offline {
		return nil
	}
	return c.weapon.Complete()
}
