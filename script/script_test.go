package script

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/gamify/binding"
	"github.com/milk9111/gamify/ecs"
	"github.com/milk9111/gamify/input"
	"github.com/milk9111/gamify/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inputScript = `
name := "camera_input"

init := func(engine, state) {
	engine.bind("move", "gamepad.left_joystick")
	engine.bind("up", "gamepad.left_trigger")
	state.move = {x: 0.0, y: 0.0}
	state.updown = 0.0
	state._hidden = true
}

update := func(engine, state) {
	state.move = engine.get_vector2("move")
	state.updown = engine.get_float("up")
}
`

const moverScript = `
name := "mover"
dependencies := ["camera_input"]

update := func(engine, state) {
	ci := engine.component("camera_input")
	f := engine.forward()
	r := engine.right()
	engine.move({
		x: f.x*ci.move.y + r.x*ci.move.x,
		y: f.y*ci.move.y + r.y*ci.move.x,
		z: f.z*ci.move.y + r.z*ci.move.x,
	})
}
`

const luaMover = `
name = "lua_mover"
dependencies = { "camera_input" }

function update(engine, state)
  local ci = engine.component("camera_input")
  local f = engine.forward()
  local r = engine.right()
  engine.move({
    x = f.x * ci.move.y + r.x * ci.move.x,
    y = f.y * ci.move.y + r.y * ci.move.x,
    z = f.z * ci.move.y + r.z * ci.move.x,
  })
  state.moved = (state.moved or 0) + 1
end
`

type fixture struct {
	world  *ecs.World
	poller *input.StaticPoller
	loop   *ecs.Loop
}

func newFixture(t *testing.T, sources map[string]string) *fixture {
	t.Helper()
	poller := &input.StaticPoller{}
	poller.State.Gamepads[0] = input.RawGamepad{
		Connected:   true,
		LeftStick:   input.Vec2{X: 0.5, Y: -0.3},
		LeftTrigger: 0.5,
	}
	ctx := binding.NewInputContext(input.NewDevices(poller, input.DefaultOptions()), nil)
	catalog := ecs.NewCatalog()
	for path, src := range sources {
		_, err := Register(catalog, path, []byte(src))
		require.NoError(t, err, path)
	}
	w := ecs.NewWorld(ctx, catalog)
	return &fixture{world: w, poller: poller, loop: ecs.NewLoop(w)}
}

func assertVec(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "component %d of %v", i, got)
	}
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		path    string
		src     string
		name    string
		deps    []string
		wantErr error
	}{
		{"input.tengo", inputScript, "camera_input", nil, nil},
		{"mover.tengo", moverScript, "mover", []string{"camera_input"}, nil},
		{"mover.lua", luaMover, "lua_mover", []string{"camera_input"}, nil},
		{"nameless.tengo", `update := func(e, s) {}`, "", nil, ErrInvalid},
		{"nameless.lua", `function update(e, s) end`, "", nil, ErrInvalid},
		{"broken.tengo", `name := `, "", nil, ErrInvalid},
		{"broken.lua", `name = = 1`, "", nil, ErrInvalid},
		{"component.py", `name = "x"`, "", nil, ErrUnsupported},
	}

	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			d, err := Describe(c.path, []byte(c.src))
			if c.wantErr != nil {
				require.ErrorIs(t, err, c.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.name, d.Name)
			assert.Equal(t, c.deps, d.Dependencies)
			assert.NotNil(t, d.New)
		})
	}
}

func TestTengoMovement(t *testing.T) {
	f := newFixture(t, map[string]string{"input.tengo": inputScript, "mover.tengo": moverScript})
	engine := transform.NewBasic()
	o, err := f.world.CreateObject("camera", engine)
	require.NoError(t, err)
	require.NoError(t, f.world.AttachAll(o, ecs.AttachSpec{Name: "mover"}, ecs.AttachSpec{Name: "camera_input"}))

	f.loop.Tick()
	assertVec(t, mgl64.Vec3{0.5, 0, 0.3}, engine.Position())

	h, err := o.Get("camera_input")
	require.NoError(t, err)
	exports := h.Export()
	assert.Equal(t, 0.5, exports["updown"])
	assert.NotContains(t, exports, "_hidden")
}

func TestLuaMovement(t *testing.T) {
	f := newFixture(t, map[string]string{"input.tengo": inputScript, "mover.lua": luaMover})
	engine := transform.NewBasic()
	o, err := f.world.CreateObject("camera", engine)
	require.NoError(t, err)
	require.NoError(t, f.world.AttachAll(o, ecs.AttachSpec{Name: "camera_input"}, ecs.AttachSpec{Name: "lua_mover"}))

	f.loop.Tick()
	f.loop.Tick()
	assertVec(t, mgl64.Vec3{1, 0, 0.6}, engine.Position())

	h, err := o.Get("lua_mover")
	require.NoError(t, err)
	assert.Equal(t, 2.0, h.Export()["moved"])
}

func TestStatePerInstance(t *testing.T) {
	src := `
name := "counter"
update := func(engine, state) {
	state.n = state.n + 1
}
`
	f := newFixture(t, map[string]string{"counter.tengo": src})
	a, _ := f.world.CreateObject("a", nil)
	b, _ := f.world.CreateObject("b", nil)
	_, err := f.world.Attach(a, "counter", map[string]any{"n": 10})
	require.NoError(t, err)
	_, err = f.world.Attach(b, "counter", map[string]any{"n": 0})
	require.NoError(t, err)

	f.loop.Tick()
	f.loop.Tick()

	ha, _ := a.Get("counter")
	hb, _ := b.Get("counter")
	assert.EqualValues(t, 12, ha.Export()["n"])
	assert.EqualValues(t, 2, hb.Export()["n"])
}

func TestScriptErrorsFault(t *testing.T) {
	cases := []struct {
		path string
		src  string
	}{
		{"returns_error.tengo", "name := \"bad\"\nupdate := func(engine, state) { return error(\"lost camera\") }\n"},
		{"unknown_action.tengo", "name := \"bad\"\nupdate := func(engine, state) { engine.get_float(\"nope\") }\n"},
		{"wrong_kind.tengo", "name := \"bad\"\ninit := func(engine, state) { engine.bind(\"m\", \"gamepad.left_joystick\") }\nupdate := func(engine, state) { engine.get_float(\"m\") }\n"},
		{"raises.lua", "name = \"bad\"\nfunction update(engine, state) error(\"lost camera\") end\n"},
		{"unknown_action.lua", "name = \"bad\"\nfunction update(engine, state) engine.get_vector2(\"nope\") end\n"},
	}

	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			f := newFixture(t, map[string]string{c.path: c.src})
			o, _ := f.world.CreateObject("a", nil)
			_, err := f.world.Attach(o, "bad", nil)
			require.NoError(t, err)

			events := f.loop.Tick()
			require.Len(t, events, 2)
			assert.Equal(t, ecs.EventFaulted, events[1].Kind)
			h, _ := o.Get("bad")
			assert.ErrorIs(t, h.Fault(), ecs.ErrLifecycleFault)
		})
	}
}

func TestSelfReferencingStateFaultsExporter(t *testing.T) {
	reader := "name := \"reader\"\ndependencies := [\"cyclic\"]\nupdate := func(engine, state) { state.seen = engine.component(\"cyclic\") }\n"
	cases := []struct {
		path string
		src  string
	}{
		{"cyclic.tengo", "name := \"cyclic\"\ninit := func(engine, state) { state.n = 1 }\nupdate := func(engine, state) { state.me = state }\n"},
		{"cyclic.lua", "name = \"cyclic\"\nfunction init(engine, state) state.n = 1 end\nfunction update(engine, state) state.me = state end\n"},
	}

	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			f := newFixture(t, map[string]string{c.path: c.src, "reader.tengo": reader})
			o, _ := f.world.CreateObject("a", nil)
			require.NoError(t, f.world.AttachAll(o, ecs.AttachSpec{Name: "reader"}, ecs.AttachSpec{Name: "cyclic"}))

			var faulted []string
			for i := 0; i < 2; i++ {
				for _, evt := range f.loop.Tick() {
					if evt.Kind == ecs.EventFaulted {
						faulted = append(faulted, evt.Component)
						assert.ErrorIs(t, evt.Err, ErrUnexportable)
					}
				}
			}
			assert.Equal(t, []string{"cyclic"}, faulted)

			hr, _ := o.Get("reader")
			assert.NoError(t, hr.Fault())
			seen, ok := hr.Export()["seen"].(map[string]any)
			require.True(t, ok)
			assert.EqualValues(t, 1, seen["n"])
			assert.NotContains(t, seen, "me")
		})
	}
}

func TestSelfReferencingStateFailsInit(t *testing.T) {
	src := "name := \"cyclic\"\ninit := func(engine, state) { state.me = state }\n"
	f := newFixture(t, map[string]string{"cyclic.tengo": src})
	o, _ := f.world.CreateObject("a", nil)
	_, err := f.world.Attach(o, "cyclic", nil)
	require.ErrorIs(t, err, ecs.ErrLifecycleFault)
	assert.ErrorIs(t, err, ErrUnexportable)
	assert.Empty(t, o.Components())
}

func TestInitBindFailureRollsBack(t *testing.T) {
	src := "name := \"bad\"\ninit := func(engine, state) { engine.bind(\"m\", \"gamepad.jetpack\") }\n"
	f := newFixture(t, map[string]string{"bad.tengo": src})
	o, _ := f.world.CreateObject("a", nil)
	_, err := f.world.Attach(o, "bad", nil)
	require.ErrorIs(t, err, ecs.ErrLifecycleFault)
	assert.ErrorIs(t, err, input.ErrUnknownSource)
	assert.Empty(t, o.Components())
}

func TestMouseButtonState(t *testing.T) {
	src := `
name = "clicker"
function update(engine, state)
  state.left = engine.mouse_button(0)
  state.south = engine.button("gamepad", "south")
end
`
	f := newFixture(t, map[string]string{"clicker.lua": src})
	o, _ := f.world.CreateObject("a", nil)
	_, err := f.world.Attach(o, "clicker", nil)
	require.NoError(t, err)

	f.poller.Update(func(s *input.RawState) { s.Mouse.Buttons[input.MouseButtonLeft] = true })
	f.loop.Tick()
	h, _ := o.Get("clicker")
	assert.Equal(t, "press", h.Export()["left"])
	assert.Equal(t, "released", h.Export()["south"])

	f.loop.Tick()
	assert.Equal(t, "hold", h.Export()["left"])
}

func TestReloadReplacesDescriptor(t *testing.T) {
	catalog := ecs.NewCatalog()
	_, err := Register(catalog, "a.tengo", []byte(`name := "a"`))
	require.NoError(t, err)
	_, err = Register(catalog, "a.tengo", []byte(`name := "a"`))
	require.ErrorIs(t, err, ecs.ErrDuplicateName)

	d, undo, err := Reload(catalog, "a.lua", []byte(`name = "a"; dependencies = {"b"}`))
	require.NoError(t, err)
	got, ok := catalog.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, d.Dependencies, got.Dependencies)

	undo()
	got, ok = catalog.Lookup("a")
	require.True(t, ok)
	assert.Empty(t, got.Dependencies)

	_, undo, err = Reload(catalog, "c.tengo", []byte(`name := "c"`))
	require.NoError(t, err)
	undo()
	_, ok = catalog.Lookup("c")
	assert.False(t, ok)
}
