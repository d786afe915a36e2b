package ecs

// Component is the lifecycle contract every attached behavior implements.
// Hooks run on the frame loop goroutine.
type Component interface {
	Init(ctx *Context) error
	Update(ctx *Context) error
	Deinit(ctx *Context) error
}

// Exporter is implemented by components that expose state to siblings.
type Exporter interface {
	Export() map[string]any
}

// Factory builds a fresh component from its attach properties.
type Factory func(props map[string]any) (Component, error)

// Descriptor declares a component kind: its unique name, the sibling
// components it reads and how to build it.
type Descriptor struct {
	Name         string
	Dependencies []string
	New          Factory
}

// Hooks adapts plain functions to Component. Nil hooks are no-ops.
type Hooks struct {
	OnInit   func(ctx *Context) error
	OnUpdate func(ctx *Context) error
	OnDeinit func(ctx *Context) error
	Exports  func() map[string]any
}

func (h *Hooks) Init(ctx *Context) error {
	if h.OnInit == nil {
		return nil
	}
	return h.OnInit(ctx)
}

func (h *Hooks) Update(ctx *Context) error {
	if h.OnUpdate == nil {
		return nil
	}
	return h.OnUpdate(ctx)
}

func (h *Hooks) Deinit(ctx *Context) error {
	if h.OnDeinit == nil {
		return nil
	}
	return h.OnDeinit(ctx)
}

func (h *Hooks) Export() map[string]any {
	if h.Exports == nil {
		return nil
	}
	return h.Exports()
}

// State is where a component instance is in its lifecycle.
type State uint8

const (
	StateUnattached State = iota
	StateInitialized
	StateUpdating
	StateIdle
	StateDetached
)

func (s State) String() string {
	switch s {
	case StateUnattached:
		return "unattached"
	case StateInitialized:
		return "initialized"
	case StateUpdating:
		return "updating"
	case StateIdle:
		return "idle"
	case StateDetached:
		return "detached"
	}
	return "unknown"
}

// ComponentHandle refers to one attached component instance.
type ComponentHandle struct {
	inst *instance
}

func (h ComponentHandle) Valid() bool {
	return h.inst != nil && h.inst.state != StateDetached
}

func (h ComponentHandle) Name() string {
	if h.inst == nil {
		return ""
	}
	return h.inst.name
}

func (h ComponentHandle) State() State {
	if h.inst == nil {
		return StateUnattached
	}
	return h.inst.state
}

// Fault returns the error that stopped the component, or nil.
func (h ComponentHandle) Fault() error {
	if h.inst == nil {
		return nil
	}
	return h.inst.fault
}

func (h ComponentHandle) Component() Component {
	if h.inst == nil {
		return nil
	}
	return h.inst.comp
}

// Export returns the component's exported state, or nil if it exports none.
func (h ComponentHandle) Export() map[string]any {
	if h.inst == nil {
		return nil
	}
	if ex, ok := h.inst.comp.(Exporter); ok {
		return ex.Export()
	}
	return nil
}

// As returns the handle's component as T.
func As[T any](h ComponentHandle) (T, bool) {
	var zero T
	if h.inst == nil {
		return zero, false
	}
	cast, ok := h.inst.comp.(T)
	if !ok {
		return zero, false
	}
	return cast, true
}
