package script

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/gamify/ecs"
	"github.com/milk9111/gamify/input"
	"go.uber.org/zap"
)

// host is the engine surface both backends expose to scripts.
type host struct {
	ctx *ecs.Context
}

func (h host) bind(name, source string) error {
	_, err := h.ctx.Input.Bind(name, source)
	return err
}

func (h host) get(name string) error {
	_, err := h.ctx.Input.Get(name)
	return err
}

func (h host) float(name string) (float64, error) {
	hd, err := h.ctx.Input.Get(name)
	if err != nil {
		return 0, err
	}
	return hd.Float()
}

func (h host) vector2(name string) (input.Vec2, error) {
	hd, err := h.ctx.Input.Get(name)
	if err != nil {
		return input.Vec2{}, err
	}
	return hd.Vector2()
}

func (h host) mouseButton(code int) (string, error) {
	b := input.MouseButton(code)
	if b < 0 || b >= input.MouseButtonCount {
		return "", fmt.Errorf("script: mouse button %d out of range", code)
	}
	return h.ctx.Input.MouseButton(b).String(), nil
}

func (h host) button(device, control string) (string, error) {
	state, err := h.ctx.Input.Snapshot().Button(device, control)
	if err != nil {
		return "", err
	}
	return state.String(), nil
}

func (h host) mouseDelta() input.Vec2 {
	return h.ctx.Input.MouseDelta()
}

func (h host) component(name string) (map[string]any, error) {
	hd, err := h.ctx.Get(name)
	if err != nil {
		return nil, err
	}
	out := hd.Export()
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// vector returns one of the transform's named vectors.
func (h host) vector(which string) mgl64.Vec3 {
	t := h.ctx.Transform()
	switch which {
	case "position":
		return t.Position()
	case "rotation":
		return t.Rotation()
	case "right":
		return t.Right()
	case "forward":
		return t.Forward()
	case "up":
		return t.Up()
	}
	return mgl64.Vec3{}
}

func (h host) log(args []string) {
	h.ctx.Logger().Info(strings.Join(args, " "), zap.Uint64("tick", h.ctx.Tick()))
}

var transformReaders = []string{"position", "rotation", "right", "forward", "up"}
