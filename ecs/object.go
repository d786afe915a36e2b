package ecs

import (
	"fmt"

	"github.com/milk9111/gamify/transform"
)

// instance is one attached component on one object.
type instance struct {
	name     string
	deps     []string
	comp     Component
	object   *GameObject
	resolved map[string]*instance
	ctx      Context
	seq      uint64

	attachedTick uint64
	state        State
	fault        error
	detaching    bool
}

func (i *instance) live() bool {
	return i.state != StateDetached && !i.detaching
}

// runnable reports whether the instance gets Update calls. Instances
// attached during the running tick wait for the next one.
func (i *instance) runnable() bool {
	if w := i.object.world; w.ticking && i.attachedTick == w.tick {
		return false
	}
	return i.live() && i.fault == nil && (i.state == StateInitialized || i.state == StateIdle)
}

// GameObject owns a transform and a set of uniquely named components.
type GameObject struct {
	entity Entity
	id     string
	name   string
	world  *World

	engine transform.Transform
	buffer *transform.Buffer
	active bool

	byName map[string]*instance
	order  []*instance

	destroying bool
}

func (o *GameObject) Entity() Entity {
	return o.entity
}

// ID is the object's stable identifier.
func (o *GameObject) ID() string {
	return o.id
}

func (o *GameObject) Name() string {
	return o.name
}

// Transform is the buffered view components mutate. Writes reach the engine
// transform when the tick ends.
func (o *GameObject) Transform() transform.Transform {
	return o.buffer
}

// EngineTransform is the transform the buffer flushes into.
func (o *GameObject) EngineTransform() transform.Transform {
	return o.engine
}

// Active reports whether the object's components are updated each tick.
func (o *GameObject) Active() bool {
	return o.active
}

func (o *GameObject) SetActive(active bool) {
	o.active = active
}

// Alive reports whether the object is still owned by its world.
func (o *GameObject) Alive() bool {
	return o.world != nil && !o.destroying && o.world.entities.isAlive(o.entity)
}

func (o *GameObject) Get(name string) (ComponentHandle, error) {
	inst, ok := o.byName[name]
	if !ok {
		return ComponentHandle{}, fmt.Errorf("ecs: object %s get %q: %w", o.id, name, ErrComponentNotFound)
	}
	return ComponentHandle{inst: inst}, nil
}

func (o *GameObject) Has(name string) bool {
	_, ok := o.byName[name]
	return ok
}

// Components lists attached component names in update order.
func (o *GameObject) Components() []string {
	names := make([]string, 0, len(o.order))
	for _, inst := range o.order {
		names = append(names, inst.name)
	}
	return names
}

func (o *GameObject) liveInstances() []*instance {
	out := make([]*instance, 0, len(o.order))
	for _, inst := range o.order {
		if inst.live() {
			out = append(out, inst)
		}
	}
	return out
}

func (o *GameObject) dependents(name string) []string {
	var out []string
	for _, inst := range o.order {
		if !inst.live() || inst.name == name {
			continue
		}
		for _, dep := range inst.deps {
			if dep == name {
				out = append(out, inst.name)
				break
			}
		}
	}
	return out
}

func (o *GameObject) remove(target *instance) {
	delete(o.byName, target.name)
	for i, inst := range o.order {
		if inst == target {
			o.order = append(o.order[:i], o.order[i+1:]...)
			return
		}
	}
}
