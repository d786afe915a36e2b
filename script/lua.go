package script

import (
	"fmt"
	"sort"

	"github.com/Shopify/go-lua"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/gamify/ecs"
	"github.com/milk9111/gamify/input"
	"go.uber.org/zap"
)

type luaProgram struct {
	path string
	src  []byte
}

func describeLua(path string, src []byte, o options) (ecs.Descriptor, error) {
	l := lua.NewState()
	lua.OpenLibraries(l)
	if err := loadLua(l, path, src); err != nil {
		return ecs.Descriptor{}, fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
	}

	l.Global("name")
	name, _ := l.ToString(-1)
	l.Pop(1)

	var deps []string
	l.Global("dependencies")
	if l.IsTable(-1) {
		n := lua.LengthEx(l, -1)
		for i := 1; i <= n; i++ {
			l.RawGetInt(-1, i)
			dep, ok := l.ToString(-1)
			l.Pop(1)
			if !ok {
				l.Pop(1)
				return ecs.Descriptor{}, fmt.Errorf("%w: %s: dependency %d is not a string", ErrInvalid, path, i)
			}
			deps = append(deps, dep)
		}
	}
	l.Pop(1)

	name, err := checkDeclaration(path, name, deps)
	if err != nil {
		return ecs.Descriptor{}, err
	}

	o.log.Debug("script compiled",
		zap.String("path", path),
		zap.String("component", name),
		zap.Strings("dependencies", deps),
	)
	prog := &luaProgram{path: path, src: src}
	return ecs.Descriptor{Name: name, Dependencies: deps, New: prog.instance}, nil
}

func loadLua(l *lua.State, path string, src []byte) error {
	if err := lua.LoadBuffer(l, string(src), "@"+path, ""); err != nil {
		return err
	}
	return l.ProtectedCall(0, 0, 0)
}

// instance gives every attached component its own lua state.
func (p *luaProgram) instance(props map[string]any) (ecs.Component, error) {
	l := lua.NewState()
	lua.OpenLibraries(l)
	if err := loadLua(l, p.path, p.src); err != nil {
		return nil, fmt.Errorf("script: %s: %w", p.path, err)
	}
	pushLuaValue(l, props)
	l.SetGlobal("__state")
	return &luaComponent{path: p.path, l: l}, nil
}

type luaComponent struct {
	path    string
	l       *lua.State
	ready   bool
	exports map[string]any
}

func (c *luaComponent) Init(ctx *ecs.Context) error {
	c.l.NewTable()
	lua.SetFunctions(c.l, luaEngine(host{ctx: ctx}), 0)
	c.l.SetGlobal("__engine")
	c.ready = true
	if err := c.call("init"); err != nil {
		return err
	}
	return c.snapshot()
}

func (c *luaComponent) Update(*ecs.Context) error {
	if err := c.call("update"); err != nil {
		return err
	}
	return c.snapshot()
}

func (c *luaComponent) Deinit(*ecs.Context) error {
	if !c.ready {
		return nil
	}
	return c.call("deinit")
}

// Export returns the script state visible to siblings as of the last
// successful hook.
func (c *luaComponent) Export() map[string]any {
	return c.exports
}

func (c *luaComponent) snapshot() error {
	l := c.l
	out := map[string]any{}
	top := l.Top()
	defer l.SetTop(top)

	l.Global("__state")
	if !l.IsTable(-1) {
		c.exports = out
		return nil
	}
	l.PushNil()
	for l.Next(-2) {
		if l.TypeOf(-2) == lua.TypeString {
			key, _ := l.ToString(-2)
			if exported(key) {
				val, err := luaToGo(l, -1, 1)
				if err != nil {
					return fmt.Errorf("script: %s state %q: %w", c.path, key, err)
				}
				out[key] = val
			}
		}
		l.Pop(1)
	}
	c.exports = out
	return nil
}

func (c *luaComponent) call(hook string) error {
	l := c.l
	l.Global(hook)
	if !l.IsFunction(-1) {
		l.Pop(1)
		return nil
	}
	l.Global("__engine")
	l.Global("__state")
	if err := l.ProtectedCall(2, 0, 0); err != nil {
		return fmt.Errorf("script: %s %s: %w", c.path, hook, err)
	}
	return nil
}

func luaEngine(h host) []lua.RegistryFunction {
	fns := []lua.RegistryFunction{
		{Name: "bind", Function: func(l *lua.State) int {
			name := lua.CheckString(l, 1)
			if err := h.bind(name, lua.CheckString(l, 2)); err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			l.PushString(name)
			return 1
		}},
		{Name: "get", Function: func(l *lua.State) int {
			name := lua.CheckString(l, 1)
			if err := h.get(name); err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			l.PushString(name)
			return 1
		}},
		{Name: "get_float", Function: func(l *lua.State) int {
			f, err := h.float(lua.CheckString(l, 1))
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			l.PushNumber(f)
			return 1
		}},
		{Name: "get_vector2", Function: func(l *lua.State) int {
			v, err := h.vector2(lua.CheckString(l, 1))
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			pushLuaVec2(l, v)
			return 1
		}},
		{Name: "mouse_button", Function: func(l *lua.State) int {
			state, err := h.mouseButton(lua.CheckInteger(l, 1))
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			l.PushString(state)
			return 1
		}},
		{Name: "button", Function: func(l *lua.State) int {
			state, err := h.button(lua.CheckString(l, 1), lua.CheckString(l, 2))
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			l.PushString(state)
			return 1
		}},
		{Name: "mouse_delta", Function: func(l *lua.State) int {
			pushLuaVec2(l, h.mouseDelta())
			return 1
		}},
		{Name: "move", Function: func(l *lua.State) int {
			h.ctx.Transform().Move(checkLuaVec3(l, 1))
			return 0
		}},
		{Name: "set_position", Function: func(l *lua.State) int {
			h.ctx.Transform().SetPosition(checkLuaVec3(l, 1))
			return 0
		}},
		{Name: "set_rotation", Function: func(l *lua.State) int {
			h.ctx.Transform().SetRotation(checkLuaVec3(l, 1))
			return 0
		}},
		{Name: "rotate", Function: func(l *lua.State) int {
			h.ctx.Transform().Rotate(checkLuaVec3(l, 1), lua.CheckNumber(l, 2))
			return 0
		}},
		{Name: "component", Function: func(l *lua.State) int {
			exports, err := h.component(lua.CheckString(l, 1))
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			pushLuaValue(l, exports)
			return 1
		}},
		{Name: "tick", Function: func(l *lua.State) int {
			l.PushInteger(int(h.ctx.Tick()))
			return 1
		}},
		{Name: "log", Function: func(l *lua.State) int {
			n := l.Top()
			parts := make([]string, 0, n)
			for i := 1; i <= n; i++ {
				parts = append(parts, luaString(l, i))
			}
			h.log(parts)
			return 0
		}},
	}
	for _, which := range transformReaders {
		fns = append(fns, lua.RegistryFunction{Name: which, Function: func(l *lua.State) int {
			pushLuaVec3(l, h.vector(which))
			return 1
		}})
	}
	return fns
}

func pushLuaVec2(l *lua.State, v input.Vec2) {
	l.NewTable()
	l.PushNumber(v.X)
	l.SetField(-2, "x")
	l.PushNumber(v.Y)
	l.SetField(-2, "y")
}

func pushLuaVec3(l *lua.State, v mgl64.Vec3) {
	l.NewTable()
	for i, key := range []string{"x", "y", "z"} {
		l.PushNumber(v[i])
		l.SetField(-2, key)
	}
}

// checkLuaVec3 reads an {x=, y=, z=} table argument. Missing fields read as
// zero.
func checkLuaVec3(l *lua.State, index int) mgl64.Vec3 {
	lua.CheckType(l, index, lua.TypeTable)
	var v mgl64.Vec3
	for i, key := range []string{"x", "y", "z"} {
		l.Field(index, key)
		v[i], _ = l.ToNumber(-1)
		l.Pop(1)
	}
	return v
}

func pushLuaValue(l *lua.State, v any) {
	switch val := v.(type) {
	case nil:
		l.PushNil()
	case bool:
		l.PushBoolean(val)
	case int:
		l.PushNumber(float64(val))
	case int64:
		l.PushNumber(float64(val))
	case float64:
		l.PushNumber(val)
	case string:
		l.PushString(val)
	case []any:
		l.CheckStack(2)
		l.CreateTable(len(val), 0)
		for i, item := range val {
			pushLuaValue(l, item)
			l.RawSetInt(-2, i+1)
		}
	case map[string]any:
		l.CheckStack(2)
		l.CreateTable(0, len(val))
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			pushLuaValue(l, val[k])
			l.SetField(-2, k)
		}
	default:
		l.PushString(fmt.Sprint(val))
	}
}

// luaToGo converts the value at index. Tables with a sequence part become
// slices, other tables become maps keyed by their string keys.
func luaToGo(l *lua.State, index, depth int) (any, error) {
	if depth > maxExportDepth {
		return nil, errExportDepth
	}
	index = l.AbsIndex(index)
	switch l.TypeOf(index) {
	case lua.TypeBoolean:
		return l.ToBoolean(index), nil
	case lua.TypeNumber:
		f, _ := l.ToNumber(index)
		return f, nil
	case lua.TypeString:
		s, _ := l.ToString(index)
		return s, nil
	case lua.TypeTable:
		if !l.CheckStack(2) {
			return nil, errExportDepth
		}
		if n := lua.LengthEx(l, index); n > 0 {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				l.RawGetInt(index, i)
				val, err := luaToGo(l, -1, depth+1)
				l.Pop(1)
				if err != nil {
					return nil, err
				}
				out = append(out, val)
			}
			return out, nil
		}
		out := map[string]any{}
		l.PushNil()
		for l.Next(index) {
			if l.TypeOf(-2) == lua.TypeString {
				key, _ := l.ToString(-2)
				val, err := luaToGo(l, -1, depth+1)
				if err != nil {
					l.Pop(2)
					return nil, err
				}
				out[key] = val
			}
			l.Pop(1)
		}
		return out, nil
	}
	return nil, nil
}

func luaString(l *lua.State, index int) string {
	switch l.TypeOf(index) {
	case lua.TypeString, lua.TypeNumber:
		s, _ := l.ToString(index)
		return s
	case lua.TypeBoolean:
		if l.ToBoolean(index) {
			return "true"
		}
		return "false"
	case lua.TypeNil:
		return "nil"
	}
	return lua.TypeNameOf(l, index)
}
