package prefabs

import (
	"fmt"

	"github.com/milk9111/gamify/binding"
	"github.com/milk9111/gamify/ecs"
	"github.com/milk9111/gamify/script"
	"github.com/milk9111/gamify/transform"
	"go.uber.org/zap"
)

// Scene is a built scene: its spec and handles to the objects created for
// it, in file order.
type Scene struct {
	Spec SceneSpec

	world    *ecs.World
	entities []ecs.Entity
}

// Objects resolves the scene's objects that are still alive, in file order.
func (s *Scene) Objects() []*ecs.GameObject {
	out := make([]*ecs.GameObject, 0, len(s.entities))
	for _, e := range s.entities {
		if o, ok := s.world.Object(e); ok {
			out = append(out, o)
		}
	}
	return out
}

// Object finds a live scene object by id.
func (s *Scene) Object(id string) (*ecs.GameObject, bool) {
	for _, o := range s.Objects() {
		if o.ID() == id {
			return o, true
		}
	}
	return nil, false
}

type buildOptions struct {
	log        *zap.Logger
	loadScript func(string) ([]byte, error)
}

type BuildOption func(*buildOptions)

func WithLogger(log *zap.Logger) BuildOption {
	return func(o *buildOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// WithScriptLoader replaces LoadScript, e.g. to build from an in-memory set.
func WithScriptLoader(load func(string) ([]byte, error)) BuildOption {
	return func(o *buildOptions) {
		if load != nil {
			o.loadScript = load
		}
	}
}

// Build registers the scene's scripts in the world's catalog, adds its
// bindings and creates its objects. Each object's components attach as one
// batch, so their order in the file does not matter. On error the catalog,
// the bindings and the world are put back the way they were.
func Build(world *ecs.World, spec SceneSpec, opts ...BuildOption) (_ *Scene, err error) {
	o := buildOptions{log: zap.NewNop(), loadScript: LoadScript}
	for _, opt := range opts {
		opt(&o)
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: scene %q: %w", spec.Name, err)
	}

	var undo []func()
	defer func() {
		if err == nil {
			return
		}
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}()

	declared := make(map[string]string, len(spec.Scripts))
	for _, p := range spec.Scripts {
		src, err := o.loadScript(p)
		if err != nil {
			return nil, fmt.Errorf("prefabs: load script %s: %w", p, err)
		}
		d, restore, err := script.Reload(world.Catalog(), p, src, script.WithLogger(o.log))
		if err != nil {
			return nil, err
		}
		undo = append(undo, restore)
		if prev, ok := declared[d.Name]; ok {
			return nil, fmt.Errorf("prefabs: %s and %s both declare %q: %w", prev, p, d.Name, ecs.ErrDuplicateName)
		}
		declared[d.Name] = p
	}

	var registry *binding.Registry
	if world.Input() != nil {
		registry = world.Input().Registry()
	}
	for _, b := range spec.Bindings {
		if registry == nil {
			return nil, fmt.Errorf("prefabs: scene %q has bindings but the world has no input", spec.Name)
		}
		h, err := registry.Add(b.Action, b.Source)
		if err != nil {
			return nil, fmt.Errorf("prefabs: scene %q: %w", spec.Name, err)
		}
		undo = append(undo, func() { _ = registry.Remove(h.Name()) })
	}

	scene := &Scene{Spec: spec, world: world}
	for _, objSpec := range spec.Objects {
		obj, err := buildObject(world, objSpec)
		if err != nil {
			return nil, fmt.Errorf("prefabs: scene %q: %w", spec.Name, err)
		}
		undo = append(undo, func() { _ = world.Destroy(obj) })
		scene.entities = append(scene.entities, obj.Entity())
	}

	o.log.Info("scene built",
		zap.String("scene", spec.Name),
		zap.Int("objects", len(scene.entities)),
		zap.Int("scripts", len(spec.Scripts)),
		zap.Int("bindings", len(spec.Bindings)),
	)
	return scene, nil
}

func buildObject(world *ecs.World, spec ObjectSpec) (*ecs.GameObject, error) {
	engine := transform.NewBasicAt(spec.Transform.Position.Vec3(), spec.Transform.Rotation.Vec3())
	opts := []ecs.ObjectOption{ecs.WithID(spec.ID)}
	if !spec.IsActive() {
		opts = append(opts, ecs.Inactive())
	}
	obj, err := world.CreateObject(spec.Name, engine, opts...)
	if err != nil {
		return nil, err
	}

	attach := make([]ecs.AttachSpec, 0, len(spec.Components))
	for _, c := range spec.Components {
		attach = append(attach, ecs.AttachSpec{Name: c.Name, Props: c.Props})
	}
	if err := world.AttachAll(obj, attach...); err != nil {
		_ = world.Destroy(obj)
		return nil, fmt.Errorf("object %q: %w", obj.ID(), err)
	}
	return obj, nil
}
