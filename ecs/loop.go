package ecs

// System runs once per tick after every component has updated.
type System interface {
	Update(w *World)
}

// SystemFunc adapts a function to System.
type SystemFunc func(w *World)

func (f SystemFunc) Update(w *World) {
	f(w)
}

// Loop drives one world: poll input, update components, run systems, flush
// transforms, then apply deferred teardown.
type Loop struct {
	world   *World
	systems []System
	closed  bool
}

func NewLoop(world *World, systems ...System) *Loop {
	copied := append([]System(nil), systems...)
	return &Loop{world: world, systems: copied}
}

func (l *Loop) Add(system System) {
	if system == nil {
		return
	}
	l.systems = append(l.systems, system)
}

func (l *Loop) World() *World {
	return l.world
}

// Tick advances the world by one frame and returns the lifecycle events the
// frame produced.
func (l *Loop) Tick() []Event {
	if l.closed {
		return nil
	}
	w := l.world
	if w.input != nil {
		w.input.Refresh()
	}
	w.BeginTick()
	w.Update()
	for _, system := range l.systems {
		system.Update(w)
	}
	w.EndTick()
	if w.input != nil {
		w.input.Settle()
	}
	return w.events.Drain()
}

// Shutdown deinitializes every component, then releases the input devices.
// Later ticks do nothing.
func (l *Loop) Shutdown() error {
	if l.closed {
		return nil
	}
	l.closed = true
	l.world.Shutdown()
	if l.world.input == nil {
		return nil
	}
	return l.world.input.Close()
}
