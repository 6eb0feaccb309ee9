// Package handler implements the per-unit facade through which an
// embedding script safely mutates the kernel: a two-phase
// NotReady(builder)/Ready object matching spec.md §4.6 and §9's "builder
// vs. in-place configuration" note. Grounded on the teacher's two-phase
// UnitManager construction idiom (accumulate configuration, then flip a
// running flag) and on handler.rs's acquire/subscribe/release/block
// sequencing for wait_for_update.
package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/AdonaIsium/kikan/internal/kerr"
	"github.com/AdonaIsium/kikan/internal/kikan"
	"github.com/AdonaIsium/kikan/internal/module"
	"github.com/AdonaIsium/kikan/internal/types"
)

// EngineSTE is the only engine tag this kernel recognizes. utils.
// new_engine in the embedded scripting API is expected to pass this
// through unchanged; additional engine kinds would extend engineKinds
// below, not the handler's shape.
const EngineSTE = "ste"

var engineKinds = map[string]struct{}{
	EngineSTE: {},
}

// builder accumulates module choices before Ready. It is swapped for a
// UnitId atomically on Ready(), never mutated in place afterward.
type builder struct {
	engineKind string
}

// Handler is a single script's entrypoint into the kernel. Its zero
// value is not usable; construct with New.
//
// Before Ready() it is in the NotReady state: SetEngine accumulates
// configuration and every kernel-facing operation but WaitForUpdate
// fails kerr.ErrUninited. After Ready() it holds a UnitId and every
// further SetEngine/Ready call fails kerr.ErrAlreadyInited.
type Handler struct {
	id     string
	k      *kikan.Kikan
	b      *builder
	unitID types.UnitId
	ready  bool
}

// New constructs a NotReady handler bound to k. id is a caller-supplied
// correlation id used only for logging/debugging; if empty, New mints
// one with google/uuid.
func New(k *kikan.Kikan, id string) *Handler {
	if id == "" {
		id = uuid.NewString()
	}
	return &Handler{
		id: id,
		k:  k,
		b:  &builder{engineKind: EngineSTE},
	}
}

// ID returns the handler's correlation id.
func (h *Handler) ID() string {
	return h.id
}

// SetEngine records the handler's engine choice by tag (utils.
// new_engine's tag_str, e.g. "ste"). Fails kerr.ErrAlreadyInited once
// Ready, or kerr.MissingUnitMod if kind names no engine this kernel
// recognizes.
func (h *Handler) SetEngine(kind string) error {
	if h.ready {
		return kerr.ErrAlreadyInited
	}
	if _, ok := engineKinds[kind]; !ok {
		return kerr.MissingUnitMod(kind)
	}
	h.b.engineKind = kind
	return nil
}

// Ready finalizes configuration: it picks a start position via the
// kernel's generator, inserts the unit, and stores the minted id. The
// kernel's AddUnit always constructs the unit's engine itself — with
// exactly one engine kind registered in this repo (EngineSTE), the
// builder's recorded choice has nothing left to select between, so
// Ready does not need to pass it through. Fails kerr.ErrAlreadyInited
// on a second call.
func (h *Handler) Ready() error {
	if h.ready {
		return kerr.ErrAlreadyInited
	}
	pos := h.k.GenStartPos()
	id, err := h.k.AddUnit(pos)
	if err != nil {
		return err
	}
	h.unitID = id
	h.ready = true
	h.b = nil
	return nil
}

// requireReady returns kerr.ErrUninited if Ready has not yet succeeded.
func (h *Handler) requireReady() error {
	if !h.ready {
		return kerr.ErrUninited
	}
	return nil
}

// UnitID returns the handler's bound unit id. Fails kerr.ErrUninited
// before Ready.
func (h *Handler) UnitID() (types.UnitId, error) {
	if err := h.requireReady(); err != nil {
		return 0, err
	}
	return h.unitID, nil
}

// GetPosition reads the bound unit's current position. Fails
// kerr.ErrUninited before Ready, kerr.ErrGhostUnit if the unit has since
// been removed.
func (h *Handler) GetPosition() (types.Position, error) {
	if err := h.requireReady(); err != nil {
		return types.Position{}, err
	}
	pos, ok := h.k.GetUnitPosition(h.unitID)
	if !ok {
		return types.Position{}, kerr.ErrGhostUnit
	}
	return pos, nil
}

// PlanMove issues a move intent on the bound unit's engine. Fails
// kerr.ErrUninited before Ready, else whatever Kikan.PlanUnitMove
// fails with.
func (h *Handler) PlanMove(dir types.Direction) error {
	if err := h.requireReady(); err != nil {
		return err
	}
	return h.k.PlanUnitMove(h.unitID, dir)
}

// IsMoving reports whether the bound unit's engine is Busy.
func (h *Handler) IsMoving() (bool, error) {
	if err := h.requireReady(); err != nil {
		return false, err
	}
	return h.k.IsUnitMoving(h.unitID)
}

// ModAction dispatches action to the module registered under kind on
// the bound unit.
func (h *Handler) ModAction(kind string, action module.Action) error {
	if err := h.requireReady(); err != nil {
		return err
	}
	return h.k.UnitModAction(h.unitID, kind, action)
}

// WaitForUpdate blocks until the next tick completes. Available before
// and after Ready, per spec.md §4.6. It obeys the kernel's hard rule
// against holding a lock across a blocking call by construction:
// Kikan.WaitForUpdate acquires the kernel lock only long enough to
// subscribe and returns, so by the time this method blocks on sub.Wait
// no lock is held anywhere.
func (h *Handler) WaitForUpdate(ctx context.Context) error {
	sub := h.k.WaitForUpdate()
	return sub.Wait(ctx)
}
