package ecs

import (
	"fmt"

	"github.com/milk9111/gamify/binding"
	"github.com/milk9111/gamify/transform"
	"go.uber.org/zap"
)

// Context is what a component's hooks see: the shared input surface, the
// owning object and the siblings it declared as dependencies.
type Context struct {
	Input *binding.InputContext

	inst *instance
	tick uint64
	log  *zap.Logger
}

// Tick is the frame counter of the tick being run. It is zero before the
// first tick.
func (c *Context) Tick() uint64 {
	return c.tick
}

func (c *Context) Object() *GameObject {
	return c.inst.object
}

// Name is the attached component's name.
func (c *Context) Name() string {
	return c.inst.name
}

// Transform is the owning object's buffered transform.
func (c *Context) Transform() transform.Transform {
	return c.inst.object.Transform()
}

// Get resolves a sibling component. Declared dependencies resolve even
// while their batch is still initializing.
func (c *Context) Get(name string) (ComponentHandle, error) {
	if dep, ok := c.inst.resolved[name]; ok {
		return ComponentHandle{inst: dep}, nil
	}
	h, err := c.inst.object.Get(name)
	if err != nil {
		return ComponentHandle{}, fmt.Errorf("ecs: %q get %q: %w", c.inst.name, name, err)
	}
	return h, nil
}

func (c *Context) Logger() *zap.Logger {
	return c.log
}
