package ecs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/milk9111/gamify/binding"
	"github.com/milk9111/gamify/transform"
	"go.uber.org/zap"
)

// AttachSpec names a catalog descriptor and the properties its factory gets.
type AttachSpec struct {
	Name  string
	Props map[string]any
}

// World owns game objects and drives their component lifecycles.
type World struct {
	entities entityStore
	lookup   SparseSet[*GameObject]
	objects  []*GameObject
	byID     map[string]*GameObject

	catalog *Catalog
	input   *binding.InputContext
	events  EventQueue
	log     *zap.Logger

	tick     uint64
	ticking  bool
	seq      uint64
	deferred []*instance
	doomed   []*GameObject
}

type Option func(*World)

func WithLogger(log *zap.Logger) Option {
	return func(w *World) {
		if log != nil {
			w.log = log
		}
	}
}

// NewWorld creates an empty world. A nil catalog gets an empty one.
func NewWorld(input *binding.InputContext, catalog *Catalog, opts ...Option) *World {
	if catalog == nil {
		catalog = NewCatalog()
	}
	w := &World{
		byID:    map[string]*GameObject{},
		catalog: catalog,
		input:   input,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) Catalog() *Catalog {
	return w.catalog
}

func (w *World) Input() *binding.InputContext {
	return w.input
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	return &w.events
}

// Tick is the number of ticks started so far.
func (w *World) Tick() uint64 {
	return w.tick
}

type ObjectOption func(*GameObject)

// WithID gives the object a fixed identifier instead of a generated one.
func WithID(id string) ObjectOption {
	return func(o *GameObject) {
		if id = strings.TrimSpace(id); id != "" {
			o.id = id
		}
	}
}

// Inactive creates the object with updates switched off.
func Inactive() ObjectOption {
	return func(o *GameObject) {
		o.active = false
	}
}

// CreateObject allocates an object around engine. A nil engine transform
// gets an identity one.
func (w *World) CreateObject(name string, engine transform.Transform, opts ...ObjectOption) (*GameObject, error) {
	if engine == nil {
		engine = transform.NewBasic()
	}
	o := &GameObject{
		id:     uuid.NewString(),
		name:   name,
		world:  w,
		engine: engine,
		buffer: transform.NewBuffer(engine),
		active: true,
		byName: map[string]*instance{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if _, ok := w.byID[o.id]; ok {
		return nil, fmt.Errorf("ecs: create %q: %w", o.id, ErrDuplicateObject)
	}

	o.entity = w.entities.create()
	w.lookup.Set(o.entity.id(), o)
	w.objects = append(w.objects, o)
	w.byID[o.id] = o
	return o, nil
}

// Object resolves an entity handle. Stale handles resolve to nothing.
func (w *World) Object(e Entity) (*GameObject, bool) {
	if !w.entities.isAlive(e) {
		return nil, false
	}
	return w.lookup.Get(e.id())
}

func (w *World) Find(id string) (*GameObject, bool) {
	o, ok := w.byID[id]
	return o, ok
}

// Objects lists live objects in creation order.
func (w *World) Objects() []*GameObject {
	out := make([]*GameObject, 0, len(w.objects))
	for _, o := range w.objects {
		if !o.destroying {
			out = append(out, o)
		}
	}
	return out
}

// Attach attaches one component from the catalog.
func (w *World) Attach(o *GameObject, name string, props map[string]any) (ComponentHandle, error) {
	if err := w.AttachAll(o, AttachSpec{Name: name, Props: props}); err != nil {
		return ComponentHandle{}, err
	}
	return o.Get(name)
}

// AttachAll attaches a batch of components. Either every component in the
// batch is initialized and attached or the object is left unchanged. Inits
// run in dependency order; components attached during a tick get their
// first update on the next tick.
func (w *World) AttachAll(o *GameObject, specs ...AttachSpec) error {
	if o == nil || o.world != w || !o.Alive() {
		return ErrObjectNotAlive
	}
	if len(specs) == 0 {
		return nil
	}

	batch := make([]*instance, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	descs := make([]Descriptor, 0, len(specs))
	for _, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if seen[name] || o.Has(name) {
			return fmt.Errorf("ecs: attach %q to %s: %w", name, o.id, ErrDuplicateName)
		}
		seen[name] = true
		desc, ok := w.catalog.Lookup(name)
		if !ok {
			return fmt.Errorf("ecs: attach %q to %s: %w", name, o.id, ErrComponentNotFound)
		}
		descs = append(descs, desc)
		w.seq++
		batch = append(batch, &instance{
			name:         name,
			deps:         desc.Dependencies,
			object:       o,
			seq:          w.seq,
			attachedTick: w.tick,
		})
	}

	candidate := append(o.liveInstances(), batch...)
	sorted, err := sortByDependencies(candidate)
	if err != nil {
		return fmt.Errorf("ecs: attach to %s: %w", o.id, err)
	}

	byName := make(map[string]*instance, len(candidate))
	for _, inst := range candidate {
		byName[inst.name] = inst
	}
	for i, inst := range batch {
		comp, err := descs[i].New(specs[i].Props)
		if err != nil {
			return fmt.Errorf("ecs: build %q for %s: %w: %w", inst.name, o.id, ErrLifecycleFault, err)
		}
		if comp == nil {
			return fmt.Errorf("ecs: build %q for %s: %w: factory returned nil", inst.name, o.id, ErrLifecycleFault)
		}
		inst.comp = comp
		inst.resolved = make(map[string]*instance, len(inst.deps))
		for _, dep := range inst.deps {
			inst.resolved[dep] = byName[dep]
		}
		inst.ctx = Context{Input: w.input, inst: inst, log: w.log.With(zap.String("object", o.id), zap.String("component", inst.name))}
	}

	inBatch := make(map[*instance]bool, len(batch))
	for _, inst := range batch {
		inBatch[inst] = true
	}
	var initialized []*instance
	for _, inst := range sorted {
		if !inBatch[inst] {
			continue
		}
		inst.ctx.tick = w.tick
		if err := guard(func() error { return inst.comp.Init(&inst.ctx) }); err != nil {
			w.log.Error("component init failed",
				zap.String("object", o.id),
				zap.String("component", inst.name),
				zap.Error(err),
			)
			w.deinit(inst)
			for i := len(initialized) - 1; i >= 0; i-- {
				w.deinit(initialized[i])
			}
			return fmt.Errorf("ecs: init %q on %s: %w: %w", inst.name, o.id, ErrLifecycleFault, err)
		}
		inst.state = StateInitialized
		initialized = append(initialized, inst)
	}

	for _, inst := range initialized {
		o.byName[inst.name] = inst
		w.events.Push(Event{Kind: EventAttached, Object: o.id, Component: inst.name, Tick: w.tick})
	}
	o.order = w.reorder(o, sorted)
	return nil
}

// reorder keeps components already pending detach at their old position
// relative to the new dependency order.
func (w *World) reorder(o *GameObject, sorted []*instance) []*instance {
	out := make([]*instance, 0, len(o.order)+len(sorted))
	out = append(out, sorted...)
	for _, inst := range o.order {
		if inst.detaching {
			out = append(out, inst)
		}
	}
	return out
}

// Detach removes a component. During a tick the component is skipped from
// the request on and its Deinit runs once the tick's updates are done.
func (w *World) Detach(o *GameObject, name string) error {
	if o == nil || o.world != w {
		return ErrObjectNotAlive
	}
	inst, ok := o.byName[name]
	if !ok {
		return fmt.Errorf("ecs: detach %q from %s: %w", name, o.id, ErrComponentNotFound)
	}
	if inst.detaching {
		return nil
	}
	if deps := o.dependents(name); len(deps) > 0 {
		return fmt.Errorf("ecs: detach %q from %s: %w: still needed by %s", name, o.id, ErrBadDependency, strings.Join(deps, ", "))
	}
	if w.ticking {
		inst.detaching = true
		w.deferred = append(w.deferred, inst)
		return nil
	}
	w.finalize(inst)
	return nil
}

// Destroy detaches every component, dependents first, and releases the
// object. During a tick the teardown waits for the tick's updates.
func (w *World) Destroy(o *GameObject) error {
	if o == nil || o.world != w || !o.Alive() {
		return ErrObjectNotAlive
	}
	if w.ticking {
		o.destroying = true
		w.doomed = append(w.doomed, o)
		return nil
	}
	w.teardown(o)
	return nil
}

// Shutdown runs pending deinits and destroys every object, newest first.
func (w *World) Shutdown() {
	w.ticking = false
	w.settle()
	for i := len(w.objects) - 1; i >= 0; i-- {
		w.teardown(w.objects[i])
	}
}

// BeginTick opens a tick and copies engine transforms into the buffers.
func (w *World) BeginTick() {
	w.tick++
	w.ticking = true
	for _, o := range w.objects {
		o.buffer.Flush()
		o.buffer.Sync()
	}
}

// Update runs every live component once, in dependency order, object by
// object. A failing component faults and is skipped from then on; the
// others keep running.
func (w *World) Update() {
	objects := append([]*GameObject(nil), w.objects...)
	for _, o := range objects {
		if o.destroying || !o.active {
			continue
		}
		order := append([]*instance(nil), o.order...)
		for _, inst := range order {
			if inst.runnable() && !o.destroying {
				w.update(inst)
			}
		}
	}
}

// EndTick flushes buffered transforms and runs deferred teardown.
func (w *World) EndTick() {
	for _, o := range w.objects {
		if !o.destroying {
			o.buffer.Flush()
		}
	}
	w.ticking = false
	w.settle()
}

func (w *World) update(inst *instance) {
	inst.state = StateUpdating
	inst.ctx.tick = w.tick
	err := guard(func() error { return inst.comp.Update(&inst.ctx) })
	inst.state = StateIdle
	if err == nil {
		return
	}

	inst.fault = fmt.Errorf("%w: %w", ErrLifecycleFault, err)
	w.log.Error("component faulted",
		zap.String("object", inst.object.id),
		zap.String("component", inst.name),
		zap.Uint64("tick", w.tick),
		zap.Error(err),
	)
	w.events.Push(Event{Kind: EventFaulted, Object: inst.object.id, Component: inst.name, Tick: w.tick, Err: inst.fault})
}

func (w *World) settle() {
	deferred := w.deferred
	w.deferred = nil
	for _, inst := range deferred {
		w.finalize(inst)
	}
	doomed := w.doomed
	w.doomed = nil
	for _, o := range doomed {
		w.teardown(o)
	}
}

func (w *World) finalize(inst *instance) {
	w.deinit(inst)
	inst.object.remove(inst)
	w.events.Push(Event{Kind: EventDetached, Object: inst.object.id, Component: inst.name, Tick: w.tick})
}

func (w *World) teardown(o *GameObject) {
	for i := len(o.order) - 1; i >= 0; i-- {
		w.finalize(o.order[i])
	}
	o.destroying = true
	w.entities.destroy(o.entity)
	w.lookup.Remove(o.entity.id())
	delete(w.byID, o.id)
	for i, cur := range w.objects {
		if cur == o {
			w.objects = append(w.objects[:i], w.objects[i+1:]...)
			break
		}
	}
}

// deinit runs Deinit at most once per instance.
func (w *World) deinit(inst *instance) {
	if inst.state == StateDetached {
		return
	}
	inst.state = StateDetached
	inst.ctx.tick = w.tick
	if err := guard(func() error { return inst.comp.Deinit(&inst.ctx) }); err != nil {
		w.log.Warn("component deinit failed",
			zap.String("object", inst.object.id),
			zap.String("component", inst.name),
			zap.Error(err),
		)
	}
}

// guard runs a hook, turning panics into errors.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("panic: %w", e)
				return
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// IsFault reports whether err came from a component hook.
func IsFault(err error) bool {
	return errors.Is(err, ErrLifecycleFault)
}
