package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/milk9111/gamify/binding"
	"github.com/milk9111/gamify/config"
	"github.com/milk9111/gamify/ecs"
	"github.com/milk9111/gamify/input"
	"github.com/milk9111/gamify/input/ebitenpoll"
	"github.com/milk9111/gamify/prefabs"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

type Game struct {
	frames int
	faults int

	cfg     config.Config
	log     *zap.Logger
	devices *input.Devices
	watcher *prefabs.Watcher

	loop       *ecs.Loop
	scene      *prefabs.Scene
	background color.Color
}

func NewGame(cfg config.Config, log *zap.Logger) (*Game, error) {
	g := &Game{
		cfg:     cfg,
		log:     log,
		devices: input.NewDevices(ebitenpoll.New(), cfg.InputOptions()),
	}
	if err := g.loadScene(); err != nil {
		return nil, err
	}

	if cfg.Watch {
		w, err := prefabs.NewWatcher(log, "prefabs/scenes", "prefabs/scripts")
		if err != nil {
			log.Warn("hot reload disabled", zap.Error(err))
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

// loadScene builds the configured scene into a fresh world. The devices
// carry over so button edges survive a reload. The previous world is only
// shut down once the new one built.
func (g *Game) loadScene() error {
	spec, err := prefabs.LoadScene(g.cfg.Scene)
	if err != nil {
		return err
	}

	registry := binding.NewRegistry(binding.WithLogger(g.log))
	world := ecs.NewWorld(binding.NewInputContext(g.devices, registry), ecs.NewCatalog(), ecs.WithLogger(g.log))
	scene, err := prefabs.Build(world, spec, prefabs.WithLogger(g.log))
	if err != nil {
		return err
	}

	if g.loop != nil {
		g.loop.World().Shutdown()
	}
	g.loop = ecs.NewLoop(world)
	g.scene = scene
	g.faults = 0
	g.background = colornames.Darkslategray
	if spec.Background.Color != nil {
		g.background = spec.Background.Color
	}
	return nil
}

func (g *Game) Update() error {
	g.frames++
	g.reloadIfChanged()

	for _, evt := range g.loop.Tick() {
		switch evt.Kind {
		case ecs.EventFaulted:
			g.faults++
		default:
			g.log.Debug("lifecycle",
				zap.String("event", string(evt.Kind)),
				zap.String("object", evt.Object),
				zap.String("component", evt.Component),
			)
		}
	}

	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) reloadIfChanged() {
	if g.watcher == nil {
		return
	}
	select {
	case change, ok := <-g.watcher.Events:
		if !ok {
			g.watcher = nil
			return
		}
		if err := g.loadScene(); err != nil {
			g.log.Error("reload failed, keeping current scene", zap.String("path", change.Path), zap.Error(err))
			return
		}
		g.log.Info("scene reloaded", zap.String("path", change.Path))
	case err, ok := <-g.watcher.Errors:
		if ok {
			g.log.Warn("watch error", zap.Error(err))
		}
	default:
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.background)

	var b strings.Builder
	fmt.Fprintf(&b, "Scene: %s    Tick: %d    FPS: %.2f    Faults: %d\n",
		g.scene.Spec.Name, g.loop.World().Tick(), ebiten.ActualFPS(), g.faults)
	for _, o := range g.scene.Objects() {
		t := o.EngineTransform()
		p, r := t.Position(), t.Rotation()
		state := ""
		if !o.Active() {
			state = " (inactive)"
		}
		fmt.Fprintf(&b, "\n%s%s\n  pos (%.2f, %.2f, %.2f)  rot (%.2f, %.2f, %.2f)\n  %s\n",
			o.Name(), state, p.X(), p.Y(), p.Z(), r.X(), r.Y(), r.Z(), strings.Join(o.Components(), ", "))
	}
	ebitenutil.DebugPrint(screen, b.String())
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}

// Close stops watching and deinitializes every component before the
// devices are released.
func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	if err := g.loop.Shutdown(); err != nil {
		g.log.Warn("shutdown", zap.Error(err))
	}
}
