package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdonaIsium/kikan/internal/types"
)

func TestDirectionApply(t *testing.T) {
	origin := types.Position{X: 0, Y: 0}

	assert.Equal(t, types.Position{X: 1, Y: 0}, types.North.Apply(origin))
	assert.Equal(t, types.Position{X: -1, Y: 0}, types.South.Apply(origin))
	assert.Equal(t, types.Position{X: 0, Y: 1}, types.East.Apply(origin))
	assert.Equal(t, types.Position{X: 0, Y: -1}, types.West.Apply(origin))
}

func TestDirectionRoundTrip(t *testing.T) {
	pos := types.Position{X: 3, Y: 3}
	pos = types.North.Apply(pos)
	pos = types.East.Apply(pos)
	pos = types.South.Apply(pos)
	pos = types.West.Apply(pos)
	assert.Equal(t, types.Position{X: 3, Y: 3}, pos)
}

func TestParseDirection(t *testing.T) {
	cases := map[string]types.Direction{
		"N": types.North, "n": types.North,
		"S": types.South, "s": types.South,
		"W": types.West, "w": types.West,
		"E": types.East, "e": types.East,
	}
	for s, want := range cases {
		got, err := types.ParseDirection(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := types.ParseDirection("NE")
	assert.Error(t, err)

	_, err = types.ParseDirection("Q")
	assert.Error(t, err)
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "N", types.North.String())
	assert.Equal(t, "S", types.South.String())
	assert.Equal(t, "W", types.West.String())
	assert.Equal(t, "E", types.East.String())
}

func TestDirectionIsValid(t *testing.T) {
	assert.True(t, types.North.IsValid())
	assert.False(t, types.Direction(99).IsValid())
}

func TestStatusTransitionsReportedCorrectly(t *testing.T) {
	assert.True(t, types.Operational.IsOperational())
	assert.False(t, types.Operational.IsBusy())

	assert.True(t, types.Busy.IsBusy())
	assert.False(t, types.Busy.IsOperational())

	assert.False(t, types.Offline.IsOperational())
	assert.False(t, types.Offline.IsBusy())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Operational", types.Operational.String())
	assert.Equal(t, "Busy", types.Busy.String())
	assert.Equal(t, "Offline", types.Offline.String())
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, types.Offline.IsValid())
	assert.False(t, types.Status(99).IsValid())
}
