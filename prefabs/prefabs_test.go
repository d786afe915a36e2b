package prefabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/gamify/binding"
	"github.com/milk9111/gamify/ecs"
	"github.com/milk9111/gamify/input"
	"github.com/milk9111/gamify/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newWorld(t *testing.T) (*ecs.World, *input.StaticPoller) {
	t.Helper()
	poller := &input.StaticPoller{}
	ctx := binding.NewInputContext(input.NewDevices(poller, input.DefaultOptions()), nil)
	return ecs.NewWorld(ctx, nil), poller
}

func TestEmbeddedScriptsDescribe(t *testing.T) {
	paths, err := Scripts()
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	names := map[string]bool{}
	for _, p := range paths {
		src, err := LoadScript(p)
		require.NoError(t, err, p)
		d, err := script.Describe(p, src)
		require.NoError(t, err, p)
		assert.False(t, names[d.Name], "%s reuses %q", p, d.Name)
		names[d.Name] = true
	}
	assert.True(t, names["camera_input"])
	assert.True(t, names["flying_camera"])
}

func TestEmbeddedScenesBuild(t *testing.T) {
	for _, name := range []string{"flying.yaml", "orbit.yaml", "fpv.yaml"} {
		t.Run(name, func(t *testing.T) {
			spec, err := LoadScene(name)
			require.NoError(t, err)
			w, _ := newWorld(t)
			scene, err := Build(w, spec)
			require.NoError(t, err)
			require.NotEmpty(t, scene.Objects())

			loop := ecs.NewLoop(w)
			for i := 0; i < 3; i++ {
				for _, evt := range loop.Tick() {
					assert.NotEqual(t, ecs.EventFaulted, evt.Kind, "%s/%s: %v", evt.Object, evt.Component, evt.Err)
				}
			}
			require.NoError(t, loop.Shutdown())
		})
	}
}

func TestFlyingCameraMoves(t *testing.T) {
	spec, err := LoadScene("flying.yaml")
	require.NoError(t, err)
	spec.Objects[0].Transform = TransformSpec{}
	spec.Objects[0].Components[0].Props["movement_speed"] = 1.0

	w, poller := newWorld(t)
	poller.State.Gamepads[0] = input.RawGamepad{Connected: true, LeftStick: input.Vec2{X: 0.5, Y: -0.3}}
	scene, err := Build(w, spec)
	require.NoError(t, err)

	cam, ok := scene.Object("camera")
	require.True(t, ok)
	assert.Equal(t, []string{"camera_input", "flying_camera"}, cam.Components())

	ecs.NewLoop(w).Tick()
	pos := cam.EngineTransform().Position()
	assert.InDelta(t, 0.5, pos.X(), 1e-9)
	assert.InDelta(t, 0.0, pos.Y(), 1e-9)
	assert.InDelta(t, 0.3, pos.Z(), 1e-9)

	tilt, ok := scene.Object("tilt")
	require.True(t, ok)
	assert.False(t, tilt.Active())
}

func TestBuildRejectsDuplicateBindings(t *testing.T) {
	spec := SceneSpec{
		Name: "dupes",
		Bindings: []BindingSpec{
			{Action: "move", Source: "gamepad.left_joystick"},
			{Action: "move", Source: "gamepad.right_joystick"},
		},
	}
	w, _ := newWorld(t)
	_, err := Build(w, spec)
	assert.ErrorIs(t, err, binding.ErrDuplicateBinding)
}

func TestBuildRollsBackObjects(t *testing.T) {
	src := map[string]string{
		"a.tengo": `name := "a"`,
		"b.tengo": "name := \"b\"\ndependencies := [\"missing\"]\n",
	}
	load := func(p string) ([]byte, error) { return []byte(src[p]), nil }
	spec := SceneSpec{
		Name:    "broken",
		Scripts: []string{"a.tengo", "b.tengo"},
		Objects: []ObjectSpec{
			{ID: "first", Components: []ComponentSpec{{Name: "a"}}},
			{ID: "second", Components: []ComponentSpec{{Name: "a"}, {Name: "b"}}},
		},
	}

	w, _ := newWorld(t)
	_, err := Build(w, spec, WithScriptLoader(load))
	require.ErrorIs(t, err, ecs.ErrBadDependency)
	assert.Empty(t, w.Objects())
}

func TestBuildRollsBackScriptsAndBindings(t *testing.T) {
	src := map[string]string{
		"a.tengo": "name := \"a\"\ndependencies := [\"kept\"]\n",
		"b.tengo": "name := \"b\"\ndependencies := [\"missing\"]\n",
	}
	load := func(p string) ([]byte, error) { return []byte(src[p]), nil }
	spec := SceneSpec{
		Name:     "broken",
		Scripts:  []string{"a.tengo", "b.tengo"},
		Bindings: []BindingSpec{{Action: "move", Source: "gamepad.left_joystick"}},
		Objects:  []ObjectSpec{{ID: "only", Components: []ComponentSpec{{Name: "b"}}}},
	}

	w, _ := newWorld(t)
	previous := ecs.Descriptor{Name: "a", New: func(map[string]any) (ecs.Component, error) { return &ecs.Hooks{}, nil }}
	require.NoError(t, w.Catalog().Register(previous))

	_, err := Build(w, spec, WithScriptLoader(load))
	require.ErrorIs(t, err, ecs.ErrBadDependency)

	a, ok := w.Catalog().Lookup("a")
	require.True(t, ok)
	assert.Empty(t, a.Dependencies, "the displaced descriptor is restored")
	_, ok = w.Catalog().Lookup("b")
	assert.False(t, ok)
	assert.Empty(t, w.Input().Registry().Names())
	assert.Empty(t, w.Objects())
}

func TestSceneDropsDestroyedObjects(t *testing.T) {
	spec, err := LoadScene("flying.yaml")
	require.NoError(t, err)
	w, _ := newWorld(t)
	scene, err := Build(w, spec)
	require.NoError(t, err)

	tilt, ok := scene.Object("tilt")
	require.True(t, ok)
	require.NoError(t, w.Destroy(tilt))

	_, ok = scene.Object("tilt")
	assert.False(t, ok)
	for _, o := range scene.Objects() {
		assert.NotEqual(t, "tilt", o.ID())
	}
	_, ok = scene.Object("camera")
	assert.True(t, ok)
}

func TestBuildRejectsScriptNameClash(t *testing.T) {
	load := func(string) ([]byte, error) { return []byte(`name := "same"`), nil }
	spec := SceneSpec{Name: "clash", Scripts: []string{"one.tengo", "two.tengo"}}
	w, _ := newWorld(t)
	_, err := Build(w, spec, WithScriptLoader(load))
	assert.ErrorIs(t, err, ecs.ErrDuplicateName)
}

func TestSceneValidate(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		ok   bool
	}{
		{"minimal", "name: x\n", true},
		{"binding without source", "bindings:\n  - action: move\n", false},
		{"duplicate ids", "objects:\n  - id: a\n  - id: a\n", false},
		{"unnamed component", "objects:\n  - id: a\n    components:\n      - props: {x: 1}\n", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var spec SceneSpec
			require.NoError(t, yaml.Unmarshal([]byte(c.yaml), &spec))
			if c.ok {
				assert.NoError(t, spec.Validate())
			} else {
				assert.Error(t, spec.Validate())
			}
		})
	}
}

func TestYAMLColor(t *testing.T) {
	var spec SceneSpec
	require.NoError(t, yaml.Unmarshal([]byte(`background: "#10203080"`), &spec))
	r, g, b, a := spec.Background.RGBA()
	assert.Equal(t, uint32(0x80), a>>8)
	assert.NotZero(t, r)
	assert.NotZero(t, g)
	assert.NotZero(t, b)

	assert.Error(t, yaml.Unmarshal([]byte(`background: "#123"`), &spec))
}

func TestCleanPaths(t *testing.T) {
	assert.Equal(t, "scripts/orbit_camera.tengo", cleanScriptPath("prefabs/scripts/orbit_camera.tengo"))
	assert.Equal(t, "scripts/orbit_camera.tengo", cleanScriptPath("orbit_camera.tengo"))
	assert.Equal(t, "scenes/fpv.yaml", cleanScenePath("fpv.yaml"))
	assert.Equal(t, "scenes/fpv.yaml", cleanScenePath("prefabs/scenes/fpv.yaml"))
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(nil, dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orbit_camera.tengo"), []byte(`name := "x"`), 0o644))

	select {
	case change := <-w.Events:
		assert.Equal(t, ScriptChanged, change.Kind)
		assert.Equal(t, "orbit_camera.tengo", filepath.Base(change.Path))
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}
