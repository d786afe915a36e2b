package binding

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/milk9111/gamify/input"
	"go.uber.org/zap"
)

// Binding maps an action name to one device source.
type Binding struct {
	Name   string
	Source input.Source
}

func (b Binding) Kind() input.Kind {
	return b.Source.Kind()
}

type change struct {
	name   string
	source input.Source
	remove bool
}

// Registry owns the action bindings and the snapshot they resolve against.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]Binding
	pending  []change
	inTick   bool
	snapshot input.Snapshot

	log *zap.Logger
}

type Option func(*Registry)

func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		bindings: map[string]Binding{},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Bind registers name, or rebinds it if it already exists. The source string
// is parsed here, so an unknown source fails immediately.
func (r *Registry) Bind(name, source string) (Handle, error) {
	src, err := input.ParseSource(source)
	if err != nil {
		return Handle{}, fmt.Errorf("binding: bind %q: %w", name, err)
	}
	return r.BindSource(name, src)
}

// BindSource is Bind with an already parsed source.
func (r *Registry) BindSource(name string, src input.Source) (Handle, error) {
	name, err := validName(name)
	if err != nil {
		return Handle{}, err
	}
	if !src.Valid() {
		return Handle{}, fmt.Errorf("binding: bind %q: %w", name, ErrUnknownSource)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.set(name, src)
	return Handle{reg: r, name: name, kind: src.Kind()}, nil
}

// Add registers name only if it is not bound yet.
func (r *Registry) Add(name, source string) (Handle, error) {
	src, err := input.ParseSource(source)
	if err != nil {
		return Handle{}, fmt.Errorf("binding: add %q: %w", name, err)
	}
	name, err = validName(name)
	if err != nil {
		return Handle{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.willExist(name) {
		return Handle{}, fmt.Errorf("binding: add %q: %w", name, ErrDuplicateBinding)
	}
	r.set(name, src)
	return Handle{reg: r, name: name, kind: src.Kind()}, nil
}

// Get returns a handle to an existing binding. It never creates one. A
// rebind staged during the tick decides the handle's kind, matching what
// Bind returned for it.
func (r *Registry) Get(name string) (Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src, ok := r.latest(name)
	if !ok {
		return Handle{}, fmt.Errorf("binding: get %q: %w", name, ErrNotFound)
	}
	return Handle{reg: r, name: name, kind: src.Kind()}, nil
}

// Remove deletes a binding. Handles to it start returning ErrNotFound.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.willExist(name) {
		return fmt.Errorf("binding: remove %q: %w", name, ErrNotFound)
	}
	if r.inTick {
		r.pending = append(r.pending, change{name: name, remove: true})
		return nil
	}
	delete(r.bindings, name)
	r.log.Debug("binding removed", zap.String("action", name))
	return nil
}

// Lookup returns the binding currently in effect for name.
func (r *Registry) Lookup(name string) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bindings[name]
	return b, ok
}

// Names lists the bound actions in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.bindings))
	for name := range r.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Read resolves name against the current source and snapshot.
func (r *Registry) Read(name string) (Value, error) {
	r.mu.RLock()
	b, ok := r.bindings[name]
	snap := r.snapshot
	r.mu.RUnlock()

	if !ok {
		return Value{}, fmt.Errorf("binding: read %q: %w", name, ErrNotFound)
	}

	switch b.Kind() {
	case input.KindScalar:
		f, err := snap.ReadScalar(b.Source)
		if err != nil {
			return Value{}, fmt.Errorf("binding: read %q: %w", name, err)
		}
		return Scalar(f), nil
	case input.KindVector2:
		v, err := snap.ReadVector2(b.Source)
		if err != nil {
			return Value{}, fmt.Errorf("binding: read %q: %w", name, err)
		}
		return Vector2(v.X, v.Y), nil
	}
	return Value{}, fmt.Errorf("binding: read %q: %w", name, ErrUnknownSource)
}

// BeginTick applies staged changes, installs the tick's snapshot and starts
// staging further rebinds until EndTick.
func (r *Registry) BeginTick(snap input.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.pending {
		r.apply(c)
	}
	r.pending = nil
	r.snapshot = snap
	r.inTick = true
}

func (r *Registry) EndTick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inTick = false
}

// Snapshot returns the device snapshot bindings currently resolve against.
func (r *Registry) Snapshot() input.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

func (r *Registry) set(name string, src input.Source) {
	_, exists := r.bindings[name]
	if exists && r.inTick {
		r.pending = append(r.pending, change{name: name, source: src})
		r.log.Debug("binding staged", zap.String("action", name), zap.Stringer("source", src))
		return
	}
	r.apply(change{name: name, source: src})
}

func (r *Registry) apply(c change) {
	if c.remove {
		delete(r.bindings, c.name)
		r.log.Debug("binding removed", zap.String("action", c.name))
		return
	}
	r.bindings[c.name] = Binding{Name: c.name, Source: c.source}
	r.log.Debug("binding set", zap.String("action", c.name), zap.Stringer("source", c.source))
}

// latest returns the source name will have once staged changes apply.
func (r *Registry) latest(name string) (input.Source, bool) {
	b, ok := r.bindings[name]
	src := b.Source
	for _, c := range r.pending {
		if c.name == name {
			src, ok = c.source, !c.remove
		}
	}
	return src, ok
}

// staged reports the kind of a rebind of name waiting for the next tick.
func (r *Registry) staged(name string) (input.Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src, ok := r.latest(name)
	if !ok {
		return input.KindInvalid, false
	}
	if b, bound := r.bindings[name]; bound && b.Source == src {
		return input.KindInvalid, false
	}
	return src.Kind(), true
}

// willExist reports whether name is bound once staged changes apply.
func (r *Registry) willExist(name string) bool {
	_, ok := r.latest(name)
	return ok
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}
