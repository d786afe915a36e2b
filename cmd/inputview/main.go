// Command inputview shows every device control as the binding layer sees it.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/milk9111/gamify/binding"
	"github.com/milk9111/gamify/input"
	"github.com/milk9111/gamify/input/ebitenpoll"
	"golang.org/x/image/colornames"
)

type viewer struct {
	ctx      *binding.InputContext
	controls []binding.Handle
	text     string
}

func newViewer(ctx *binding.InputContext, slot int) (*viewer, error) {
	v := &viewer{ctx: ctx}
	for _, name := range input.Controls() {
		source := name
		if slot > 0 {
			source = strings.Replace(name, "gamepad.", fmt.Sprintf("gamepad%d.", slot), 1)
		}
		h, err := ctx.Bind(source, source)
		if err != nil {
			return nil, err
		}
		v.controls = append(v.controls, h)
	}
	return v, nil
}

func (v *viewer) Update() error {
	snap := v.ctx.Refresh()
	defer v.ctx.Settle()

	var b strings.Builder
	fmt.Fprintf(&b, "Frame %d\n\n", snap.Frame)
	for slot := 0; slot < input.MaxGamepads; slot++ {
		fmt.Fprintf(&b, "gamepad%d connected: %v\n", slot, snap.GamepadConnected(slot))
	}
	b.WriteString("\n")
	for _, h := range v.controls {
		val, err := h.Value()
		if err != nil {
			fmt.Fprintf(&b, "%-24s %v\n", h.Name(), err)
			continue
		}
		fmt.Fprintf(&b, "%-24s %s\n", h.Name(), val)
	}
	b.WriteString("\n")
	for m := input.MouseButton(0); m < input.MouseButtonCount; m++ {
		fmt.Fprintf(&b, "%s=%s ", m, snap.MouseButton(m))
	}
	v.text = b.String()
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)
	ebitenutil.DebugPrint(screen, v.text)
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return 640, 720
}

func main() {
	slot := flag.Int("slot", 0, "gamepad slot to show")
	flag.Parse()
	if *slot < 0 || *slot >= input.MaxGamepads {
		log.Fatalf("slot must be in [0, %d)", input.MaxGamepads)
	}

	devices := input.NewDevices(ebitenpoll.New(), input.DefaultOptions())
	ctx := binding.NewInputContext(devices, nil)
	defer ctx.Close()

	v, err := newViewer(ctx, *slot)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(640, 720)
	ebiten.SetWindowTitle("Input View")
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
