// Package config collects the kernel's tunable constants in one place,
// the way bc-dunia-mcpdrill's internal/config/defaults.go does for its
// session manager.
package config

const (
	// DefaultUpdateBacklog is the per-subscriber backlog depth for the
	// update bus (spec: "42 in the source"). bus.DefaultBacklog is
	// defined in terms of this constant.
	DefaultUpdateBacklog = 42

	// DefaultMoveDelay is the engine's fixed move-commit resolve delay,
	// in ticks. engine.MoveDelay is defined in terms of this constant.
	DefaultMoveDelay = 10

	// DefaultGridWidth and DefaultGridHeight bound the demo driver's
	// random start-position generator (cmd/kikansim); the kernel itself
	// imposes no grid bound.
	DefaultGridWidth  = 64
	DefaultGridHeight = 64
)
