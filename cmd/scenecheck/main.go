// Command scenecheck builds scenes headless and runs a few ticks against
// idle devices, reporting any script that fails to load, attach or update.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/milk9111/gamify/binding"
	"github.com/milk9111/gamify/ecs"
	"github.com/milk9111/gamify/input"
	"github.com/milk9111/gamify/logging"
	"github.com/milk9111/gamify/prefabs"
	"go.uber.org/zap"
)

func main() {
	ticks := flag.Int("ticks", 10, "ticks to run per scene")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := zap.WarnLevel
	if *verbose {
		level = zap.DebugLevel
	}
	log, err := logging.New(level, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	scenes := flag.Args()
	if len(scenes) == 0 {
		scenes = []string{"flying.yaml", "orbit.yaml", "fpv.yaml"}
	}

	failed := 0
	for _, name := range scenes {
		if err := check(name, *ticks, log); err != nil {
			fmt.Printf("FAIL %s: %v\n", name, err)
			failed++
			continue
		}
		fmt.Printf("ok   %s\n", name)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func check(name string, ticks int, log *zap.Logger) error {
	spec, err := prefabs.LoadScene(name)
	if err != nil {
		return err
	}

	ctx := binding.NewInputContext(input.NewDevices(&input.StaticPoller{}, input.DefaultOptions()), nil)
	world := ecs.NewWorld(ctx, nil, ecs.WithLogger(log))
	if _, err := prefabs.Build(world, spec, prefabs.WithLogger(log)); err != nil {
		return err
	}

	loop := ecs.NewLoop(world)
	defer func() { _ = loop.Shutdown() }()
	for i := 0; i < ticks; i++ {
		for _, evt := range loop.Tick() {
			if evt.Kind == ecs.EventFaulted {
				return fmt.Errorf("tick %d: %s on %s: %w", evt.Tick, evt.Component, evt.Object, evt.Err)
			}
		}
	}
	return nil
}
