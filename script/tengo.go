package script

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/gamify/ecs"
	"github.com/milk9111/gamify/input"
	"go.uber.org/zap"
)

type tengoProgram struct {
	path     string
	compiled *tengo.Compiled
}

func describeTengo(path string, src []byte, o options) (ecs.Descriptor, error) {
	probe := tengo.NewScript(src)
	probe.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	declared, err := probe.Compile()
	if err != nil {
		return ecs.Descriptor{}, fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
	}
	if err := declared.Run(); err != nil {
		return ecs.Descriptor{}, fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
	}

	var name string
	if declared.IsDefined("name") {
		name = declared.Get("name").String()
	}
	var deps []string
	if declared.IsDefined("dependencies") {
		for _, dep := range declared.Get("dependencies").Array() {
			s, ok := dep.(string)
			if !ok {
				return ecs.Descriptor{}, fmt.Errorf("%w: %s: dependency %v is not a string", ErrInvalid, path, dep)
			}
			deps = append(deps, s)
		}
	}
	name, err = checkDeclaration(path, name, deps)
	if err != nil {
		return ecs.Descriptor{}, err
	}

	var dispatch strings.Builder
	for _, hook := range hookNames {
		if !declared.IsDefined(hook) || !declared.Get(hook).Object().CanCall() {
			continue
		}
		fmt.Fprintf(&dispatch, "if __phase == %q {\n\t__result = %s(__engine, __state)\n}\n", hook, hook)
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + dispatch.String()))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__result", nil)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return ecs.Descriptor{}, fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
	}

	o.log.Debug("script compiled",
		zap.String("path", path),
		zap.String("component", name),
		zap.Strings("dependencies", deps),
	)
	prog := &tengoProgram{path: path, compiled: compiled}
	return ecs.Descriptor{Name: name, Dependencies: deps, New: prog.instance}, nil
}

func (p *tengoProgram) instance(props map[string]any) (ecs.Component, error) {
	state := &tengo.Map{Value: make(map[string]tengo.Object, len(props))}
	for k, v := range props {
		obj, err := tengo.FromInterface(v)
		if err != nil {
			return nil, fmt.Errorf("script: %s property %q: %w", p.path, k, err)
		}
		state.Value[k] = obj
	}
	return &tengoComponent{path: p.path, compiled: p.compiled.Clone(), state: state}, nil
}

// tengoComponent runs one compiled copy of a script per attached instance.
type tengoComponent struct {
	path     string
	compiled *tengo.Compiled
	state    *tengo.Map
	engine   *tengo.ImmutableMap
	exports  map[string]any
}

func (c *tengoComponent) Init(ctx *ecs.Context) error {
	c.engine = buildTengoEngine(host{ctx: ctx})
	if err := c.run("init"); err != nil {
		return err
	}
	return c.snapshot()
}

func (c *tengoComponent) Update(*ecs.Context) error {
	if err := c.run("update"); err != nil {
		return err
	}
	return c.snapshot()
}

func (c *tengoComponent) Deinit(*ecs.Context) error {
	if c.engine == nil {
		return nil
	}
	return c.run("deinit")
}

// Export returns the script state visible to siblings as of the last
// successful hook.
func (c *tengoComponent) Export() map[string]any {
	return c.exports
}

// snapshot converts the exported state once per hook, so a state the host
// cannot convert faults this component rather than its readers.
func (c *tengoComponent) snapshot() error {
	out := make(map[string]any, len(c.state.Value))
	for k, v := range c.state.Value {
		if !exported(k) {
			continue
		}
		val, err := tengoToGo(v, 1)
		if err != nil {
			return fmt.Errorf("script: %s state %q: %w", c.path, k, err)
		}
		out[k] = val
	}
	c.exports = out
	return nil
}

func tengoToGo(obj tengo.Object, depth int) (any, error) {
	if depth > maxExportDepth {
		return nil, errExportDepth
	}
	switch o := obj.(type) {
	case *tengo.Map:
		return tengoFieldsToGo(o.Value, depth)
	case *tengo.ImmutableMap:
		return tengoFieldsToGo(o.Value, depth)
	case *tengo.Array:
		return tengoItemsToGo(o.Value, depth)
	case *tengo.ImmutableArray:
		return tengoItemsToGo(o.Value, depth)
	}
	return tengo.ToInterface(obj), nil
}

func tengoFieldsToGo(fields map[string]tengo.Object, depth int) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		val, err := tengoToGo(v, depth+1)
		if err != nil {
			return nil, err
		}
		out[k] = val
	}
	return out, nil
}

func tengoItemsToGo(items []tengo.Object, depth int) ([]any, error) {
	out := make([]any, 0, len(items))
	for _, v := range items {
		val, err := tengoToGo(v, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

func (c *tengoComponent) run(phase string) error {
	if err := c.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := c.compiled.Set("__engine", c.engine); err != nil {
		return err
	}
	if err := c.compiled.Set("__state", c.state); err != nil {
		return err
	}
	if err := c.compiled.Set("__result", nil); err != nil {
		return err
	}
	if err := c.compiled.Run(); err != nil {
		return fmt.Errorf("script: %s %s: %w", c.path, phase, err)
	}
	if e, ok := c.compiled.Get("__result").Object().(*tengo.Error); ok {
		return fmt.Errorf("script: %s %s: %s", c.path, phase, e.Value.String())
	}
	return nil
}

func buildTengoEngine(h host) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["bind"] = &tengo.UserFunction{Name: "bind", Value: func(args ...tengo.Object) (tengo.Object, error) {
		name, source, err := twoStrings("bind", args)
		if err != nil {
			return nil, err
		}
		if err := h.bind(name, source); err != nil {
			return nil, err
		}
		return &tengo.String{Value: name}, nil
	}}

	values["get"] = &tengo.UserFunction{Name: "get", Value: func(args ...tengo.Object) (tengo.Object, error) {
		name, err := oneString("get", args)
		if err != nil {
			return nil, err
		}
		if err := h.get(name); err != nil {
			return nil, err
		}
		return &tengo.String{Value: name}, nil
	}}

	values["get_float"] = &tengo.UserFunction{Name: "get_float", Value: func(args ...tengo.Object) (tengo.Object, error) {
		name, err := oneString("get_float", args)
		if err != nil {
			return nil, err
		}
		f, err := h.float(name)
		if err != nil {
			return nil, err
		}
		return &tengo.Float{Value: f}, nil
	}}

	values["get_vector2"] = &tengo.UserFunction{Name: "get_vector2", Value: func(args ...tengo.Object) (tengo.Object, error) {
		name, err := oneString("get_vector2", args)
		if err != nil {
			return nil, err
		}
		v, err := h.vector2(name)
		if err != nil {
			return nil, err
		}
		return tengoVec2(v), nil
	}}

	values["mouse_button"] = &tengo.UserFunction{Name: "mouse_button", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		code, ok := tengo.ToInt(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "code", Expected: "int", Found: args[0].TypeName()}
		}
		state, err := h.mouseButton(code)
		if err != nil {
			return nil, err
		}
		return &tengo.String{Value: state}, nil
	}}

	values["button"] = &tengo.UserFunction{Name: "button", Value: func(args ...tengo.Object) (tengo.Object, error) {
		device, control, err := twoStrings("button", args)
		if err != nil {
			return nil, err
		}
		state, err := h.button(device, control)
		if err != nil {
			return nil, err
		}
		return &tengo.String{Value: state}, nil
	}}

	values["mouse_delta"] = &tengo.UserFunction{Name: "mouse_delta", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return tengoVec2(h.mouseDelta()), nil
	}}

	for _, which := range transformReaders {
		values[which] = &tengo.UserFunction{Name: which, Value: func(args ...tengo.Object) (tengo.Object, error) {
			return tengoVec3(h.vector(which)), nil
		}}
	}

	values["move"] = &tengo.UserFunction{Name: "move", Value: func(args ...tengo.Object) (tengo.Object, error) {
		v, err := oneVec3("move", args)
		if err != nil {
			return nil, err
		}
		h.ctx.Transform().Move(v)
		return tengo.UndefinedValue, nil
	}}

	values["set_position"] = &tengo.UserFunction{Name: "set_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		v, err := oneVec3("set_position", args)
		if err != nil {
			return nil, err
		}
		h.ctx.Transform().SetPosition(v)
		return tengo.UndefinedValue, nil
	}}

	values["set_rotation"] = &tengo.UserFunction{Name: "set_rotation", Value: func(args ...tengo.Object) (tengo.Object, error) {
		v, err := oneVec3("set_rotation", args)
		if err != nil {
			return nil, err
		}
		h.ctx.Transform().SetRotation(v)
		return tengo.UndefinedValue, nil
	}}

	values["rotate"] = &tengo.UserFunction{Name: "rotate", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		axis, err := objectToVec3(args[0])
		if err != nil {
			return nil, err
		}
		angle, ok := tengo.ToFloat64(args[1])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "angle", Expected: "float", Found: args[1].TypeName()}
		}
		h.ctx.Transform().Rotate(axis, angle)
		return tengo.UndefinedValue, nil
	}}

	values["component"] = &tengo.UserFunction{Name: "component", Value: func(args ...tengo.Object) (tengo.Object, error) {
		name, err := oneString("component", args)
		if err != nil {
			return nil, err
		}
		exports, err := h.component(name)
		if err != nil {
			return nil, err
		}
		obj, err := tengo.FromInterface(exports)
		if err != nil {
			return nil, err
		}
		return obj, nil
	}}

	values["tick"] = &tengo.UserFunction{Name: "tick", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(h.ctx.Tick())}, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, arg := range args {
			parts = append(parts, objectAsString(arg))
		}
		h.log(parts)
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func oneString(fn string, args []tengo.Object) (string, error) {
	if len(args) != 1 {
		return "", tengo.ErrWrongNumArguments
	}
	s, ok := tengo.ToString(args[0])
	if !ok {
		return "", tengo.ErrInvalidArgumentType{Name: fn, Expected: "string", Found: args[0].TypeName()}
	}
	return s, nil
}

func twoStrings(fn string, args []tengo.Object) (string, string, error) {
	if len(args) != 2 {
		return "", "", tengo.ErrWrongNumArguments
	}
	a, ok := tengo.ToString(args[0])
	if !ok {
		return "", "", tengo.ErrInvalidArgumentType{Name: fn, Expected: "string", Found: args[0].TypeName()}
	}
	b, ok := tengo.ToString(args[1])
	if !ok {
		return "", "", tengo.ErrInvalidArgumentType{Name: fn, Expected: "string", Found: args[1].TypeName()}
	}
	return a, b, nil
}

func oneVec3(fn string, args []tengo.Object) (mgl64.Vec3, error) {
	if len(args) != 1 {
		return mgl64.Vec3{}, tengo.ErrWrongNumArguments
	}
	return objectToVec3(args[0])
}

// objectToVec3 accepts {x, y, z} maps and [x, y, z] arrays. Missing
// components read as zero.
func objectToVec3(obj tengo.Object) (mgl64.Vec3, error) {
	var v mgl64.Vec3
	switch o := obj.(type) {
	case *tengo.Map:
		return fieldsToVec3(o.Value), nil
	case *tengo.ImmutableMap:
		return fieldsToVec3(o.Value), nil
	case *tengo.Array:
		for i := 0; i < len(o.Value) && i < 3; i++ {
			v[i], _ = tengo.ToFloat64(o.Value[i])
		}
		return v, nil
	}
	return v, tengo.ErrInvalidArgumentType{Name: "vector", Expected: "map", Found: obj.TypeName()}
}

func fieldsToVec3(fields map[string]tengo.Object) mgl64.Vec3 {
	var v mgl64.Vec3
	for i, key := range []string{"x", "y", "z"} {
		if f, ok := fields[key]; ok {
			v[i], _ = tengo.ToFloat64(f)
		}
	}
	return v
}

func tengoVec2(v input.Vec2) *tengo.ImmutableMap {
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"x": &tengo.Float{Value: v.X},
		"y": &tengo.Float{Value: v.Y},
	}}
}

func tengoVec3(v mgl64.Vec3) *tengo.ImmutableMap {
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"x": &tengo.Float{Value: v.X()},
		"y": &tengo.Float{Value: v.Y()},
		"z": &tengo.Float{Value: v.Z()},
	}}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
