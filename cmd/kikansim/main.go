// Command kikansim drives a Kikan kernel standalone: it spawns a handful
// of in-process "scripts" (goroutines driving a Handler each, standing in
// for the embedded scripting host that spec.md puts out of scope) and
// runs the tick loop until the configured tick count is reached.
// Grounded on the teacher's context+WaitGroup goroutine-lifecycle idiom
// (the constructor/Shutdown pair of its internal/units/manager.go, not
// carried into this repository), adapted from
// "background worker goroutines owned by a manager" to "script
// goroutines racing a single driver-owned tick loop", matching spec.md
// §5's concurrency model exactly: the driver thread ticks, script
// threads call handler operations, nobody but the kernel's own mutex
// serializes them.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AdonaIsium/kikan/internal/config"
	"github.com/AdonaIsium/kikan/internal/handler"
	"github.com/AdonaIsium/kikan/internal/kikan"
	"github.com/AdonaIsium/kikan/internal/types"
)

func main() {
	units := flag.Int("units", 4, "number of script-driven units to spawn")
	ticks := flag.Int("ticks", 200, "number of ticks the driver runs")
	tickInterval := flag.Duration("tick-interval", 10*time.Millisecond, "wall-clock delay between ticks")
	gridWidth := flag.Int("grid-width", config.DefaultGridWidth, "start-position generator's x bound")
	gridHeight := flag.Int("grid-height", config.DefaultGridHeight, "start-position generator's y bound")
	verbose := flag.Bool("verbose", false, "enable debug-level logging")
	flag.Parse()

	var log *zap.Logger
	var err error
	if *verbose {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "kikansim: building logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	rng := rand.New(rand.NewSource(1))
	startPos := func() types.Position {
		return types.Position{X: rng.Intn(*gridWidth), Y: rng.Intn(*gridHeight)}
	}

	k := kikan.New(startPos, kikan.WithLogger(log))

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	for i := 0; i < *units; i++ {
		wg.Add(1)
		go runScript(ctx, &wg, k, log, fmt.Sprintf("script-%d", i))
	}

	log.Info("driver starting", zap.Int("units", *units), zap.Int("ticks", *ticks))
	for t := 0; t < *ticks; t++ {
		if err := k.Tick(); err != nil {
			log.Warn("tick returned an error", zap.Int("tick", t), zap.Error(err))
		}
		time.Sleep(*tickInterval)
	}

	cancel()
	wg.Wait()
	log.Info("driver finished", zap.String("final_state", k.String()))
}

// runScript stands in for one embedded script: it brings a unit up via
// the handler facade, then on every tick tries to plan a move in the
// next of the four directions (N, E, S, W in turn) and waits for the
// next tick. A plan made while the engine is still busy with an earlier
// move is rejected and only logged, so not every direction in the cycle
// results in a move.
func runScript(ctx context.Context, wg *sync.WaitGroup, k *kikan.Kikan, log *zap.Logger, id string) {
	defer wg.Done()

	h := handler.New(k, id)
	if err := h.Ready(); err != nil {
		log.Error("script failed to init", zap.String("script", id), zap.Error(err))
		return
	}

	dirs := []types.Direction{types.North, types.East, types.South, types.West}
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		dir := dirs[i%len(dirs)]
		if err := h.PlanMove(dir); err != nil {
			log.Debug("plan_move rejected", zap.String("script", id), zap.Error(err))
		}

		if err := h.WaitForUpdate(ctx); err != nil {
			return
		}

		pos, err := h.GetPosition()
		if err != nil {
			log.Warn("script lost its unit", zap.String("script", id), zap.Error(err))
			return
		}
		log.Debug("script tick", zap.String("script", id), zap.Int("x", pos.X), zap.Int("y", pos.Y))
	}
}
