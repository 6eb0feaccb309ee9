package kikan_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdonaIsium/kikan/internal/bus"
	"github.com/AdonaIsium/kikan/internal/kerr"
	"github.com/AdonaIsium/kikan/internal/kikan"
	"github.com/AdonaIsium/kikan/internal/module"
	"github.com/AdonaIsium/kikan/internal/types"
	"github.com/AdonaIsium/kikan/internal/weapon"
)

// fixedStartPos always returns the same position; most scenario tests
// seed units explicitly via AddUnit and never touch the generator.
func fixedStartPos() types.Position {
	return types.Position{}
}

func tick(t *testing.T, k *kikan.Kikan, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, k.Tick())
	}
}

func TestSingleUnitRoundTrip(t *testing.T) {
	k := kikan.New(fixedStartPos)
	id, err := k.AddUnit(types.Position{X: 0, Y: 0})
	require.NoError(t, err)

	require.NoError(t, k.PlanUnitMove(id, types.North))
	tick(t, k, 20)
	pos, ok := k.GetUnitPosition(id)
	require.True(t, ok)
	assert.Equal(t, types.Position{X: 1, Y: 0}, pos)

	require.NoError(t, k.PlanUnitMove(id, types.East))
	tick(t, k, 20)
	pos, _ = k.GetUnitPosition(id)
	assert.Equal(t, types.Position{X: 1, Y: 1}, pos)

	require.NoError(t, k.PlanUnitMove(id, types.South))
	tick(t, k, 20)
	pos, _ = k.GetUnitPosition(id)
	assert.Equal(t, types.Position{X: 0, Y: 1}, pos)

	require.NoError(t, k.PlanUnitMove(id, types.West))
	tick(t, k, 20)
	pos, _ = k.GetUnitPosition(id)
	assert.Equal(t, types.Position{X: 0, Y: 0}, pos)
}

func TestHeadOnDestinationCollision(t *testing.T) {
	k := kikan.New(fixedStartPos)
	a, err := k.AddUnit(types.Position{X: 0, Y: 0})
	require.NoError(t, err)
	b, err := k.AddUnit(types.Position{X: 0, Y: 1})
	require.NoError(t, err)

	require.NoError(t, k.PlanUnitMove(a, types.East))
	tick(t, k, 20)

	posA, _ := k.GetUnitPosition(a)
	posB, _ := k.GetUnitPosition(b)
	assert.Equal(t, types.Position{X: 0, Y: 0}, posA)
	assert.Equal(t, types.Position{X: 0, Y: 1}, posB)

	require.NoError(t, k.PlanUnitMove(a, types.South))
	tick(t, k, 20)

	posA, _ = k.GetUnitPosition(a)
	posB, _ = k.GetUnitPosition(b)
	assert.Equal(t, types.Position{X: -1, Y: 0}, posA)
	assert.Equal(t, types.Position{X: 0, Y: 1}, posB)
}

func TestCrossPathSharedDestinationBothEvicted(t *testing.T) {
	// Two units on a diagonal: A moves south and B moves west, so both
	// target (0,0). Both claim the same destination, both are evicted,
	// and neither moves.
	k := kikan.New(fixedStartPos)
	a, err := k.AddUnit(types.Position{X: 1, Y: 0})
	require.NoError(t, err)
	b, err := k.AddUnit(types.Position{X: 0, Y: 1})
	require.NoError(t, err)

	require.NoError(t, k.PlanUnitMove(a, types.South))
	require.NoError(t, k.PlanUnitMove(b, types.West))
	tick(t, k, 20)

	posA, _ := k.GetUnitPosition(a)
	posB, _ := k.GetUnitPosition(b)
	assert.Equal(t, types.Position{X: 1, Y: 0}, posA)
	assert.Equal(t, types.Position{X: 0, Y: 1}, posB)
}

func TestTwoMoversTargetingSameEmptySquareBothEvicted(t *testing.T) {
	k := kikan.New(fixedStartPos)
	a, err := k.AddUnit(types.Position{X: 1, Y: 0})
	require.NoError(t, err)
	b, err := k.AddUnit(types.Position{X: -1, Y: 0})
	require.NoError(t, err)

	require.NoError(t, k.PlanUnitMove(a, types.South))
	require.NoError(t, k.PlanUnitMove(b, types.North))
	tick(t, k, 20)

	posA, _ := k.GetUnitPosition(a)
	posB, _ := k.GetUnitPosition(b)
	assert.Equal(t, types.Position{X: 1, Y: 0}, posA)
	assert.Equal(t, types.Position{X: -1, Y: 0}, posB)
}

func TestSubscriptionFanOutDoesNotDeadlock(t *testing.T) {
	k := kikan.New(fixedStartPos)
	subs := make([]*bus.Subscription, 0, 45)
	for i := 0; i < 45; i++ {
		subs = append(subs, k.WaitForUpdate())
	}

	for i := 0; i < 45; i++ {
		require.NoError(t, k.Tick())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for _, sub := range subs {
		require.NoError(t, sub.Wait(ctx))
	}
}

func TestAddUnitRejectsOccupiedPosition(t *testing.T) {
	k := kikan.New(fixedStartPos)
	_, err := k.AddUnit(types.Position{X: 0, Y: 0})
	require.NoError(t, err)

	_, err = k.AddUnit(types.Position{X: 0, Y: 0})
	assert.True(t, kerr.Is(err, kerr.KindAlreadyUnitHere))
}

func TestPlanMoveFailsWhileBusy(t *testing.T) {
	k := kikan.New(fixedStartPos)
	id, err := k.AddUnit(types.Position{X: 0, Y: 0})
	require.NoError(t, err)

	require.NoError(t, k.PlanUnitMove(id, types.North))
	err = k.PlanUnitMove(id, types.East)
	assert.True(t, kerr.Is(err, kerr.KindModBusy))
}

func TestPlanMoveAgainstGhostUnit(t *testing.T) {
	k := kikan.New(fixedStartPos)
	err := k.PlanUnitMove(types.UnitId(999), types.North)
	assert.True(t, kerr.Is(err, kerr.KindGhostUnit))
}

func TestMoveDuringOfflineFails(t *testing.T) {
	k := kikan.New(fixedStartPos)
	id, err := k.AddUnit(types.Position{X: 0, Y: 0})
	require.NoError(t, err)

	require.NoError(t, k.AttachModule(id, "engine", disabledEngine{}))
	err = k.PlanUnitMove(id, types.North)
	assert.True(t, kerr.Is(err, kerr.KindModOffline))
}

func TestBusyUntilResolveDelayThenOperational(t *testing.T) {
	k := kikan.New(fixedStartPos)
	id, err := k.AddUnit(types.Position{X: 0, Y: 0})
	require.NoError(t, err)

	require.NoError(t, k.PlanUnitMove(id, types.North))
	moving, err := k.IsUnitMoving(id)
	require.NoError(t, err)
	assert.True(t, moving)

	tick(t, k, 9)
	moving, _ = k.IsUnitMoving(id)
	assert.True(t, moving)

	tick(t, k, 1)
	moving, _ = k.IsUnitMoving(id)
	assert.False(t, moving)
}

func TestRingIntegrityAfterNTicksWithNoEnqueues(t *testing.T) {
	k := kikan.New(fixedStartPos)
	for i := 0; i < 5; i++ {
		require.NoError(t, k.Tick())
	}
}

func TestUnitModActionDispatchesToAttachedWeapon(t *testing.T) {
	k := kikan.New(fixedStartPos)
	id, err := k.AddUnit(types.Position{X: 0, Y: 0})
	require.NoError(t, err)

	w := weapon.New(func(distance uint) uint { return distance })
	require.NoError(t, k.AttachModule(id, weapon.Kind, w))

	require.NoError(t, k.UnitModAction(id, weapon.Kind, weapon.Action{
		Target: types.Position{X: 3, Y: 3}, Distance: 5, Damage: 10,
	}))
	assert.Equal(t, types.Busy, w.Status())

	tick(t, k, 5)
	assert.Equal(t, types.Operational, w.Status())
}

func TestUnitModActionFailsForUnrecognizedModKind(t *testing.T) {
	k := kikan.New(fixedStartPos)
	id, err := k.AddUnit(types.Position{X: 0, Y: 0})
	require.NoError(t, err)

	err = k.UnitModAction(id, "warp", nil)
	assert.True(t, kerr.Is(err, kerr.KindMissingUnitMod))
}

func TestUnitModActionFailsForUnattachedModKind(t *testing.T) {
	k := kikan.New(fixedStartPos, kikan.WithModuleKinds("shield"))
	id, err := k.AddUnit(types.Position{X: 0, Y: 0})
	require.NoError(t, err)

	err = k.UnitModAction(id, "shield", nil)
	assert.True(t, kerr.Is(err, kerr.KindMissingUnitPart))
}

// disabledEngine is an engine.STE-shaped module.Module double that is
// Offline from construction, used to exercise the move-during-offline
// scenario without reaching into the engine package's private state.
type disabledEngine struct{}

func (disabledEngine) Status() types.Status { return types.Offline }
func (disabledEngine) Score() uint32        { return 0 }
func (disabledEngine) Complete() error      { return kerr.ErrModOffline }
func (disabledEngine) Disable() error       { return kerr.ErrModOffline }
func (disabledEngine) Begin(module.Action) (module.Commit, error) {
	return nil, kerr.ErrModOffline
}

var _ module.Module = disabledEngine{}
