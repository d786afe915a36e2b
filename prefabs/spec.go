package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// SceneSpec is a scene file: the bindings it starts with, the component
// scripts it registers and the objects it creates.
type SceneSpec struct {
	Name       string        `yaml:"name"`
	Background YAMLColor     `yaml:"background"`
	Bindings   []BindingSpec `yaml:"bindings"`
	Scripts    []string      `yaml:"scripts"`
	Objects    []ObjectSpec  `yaml:"objects"`
}

func LoadScene(filename string) (SceneSpec, error) {
	spec, err := LoadSpec[SceneSpec](filename)
	if err != nil {
		return SceneSpec{}, err
	}
	if err := spec.Validate(); err != nil {
		return SceneSpec{}, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return spec, nil
}

type BindingSpec struct {
	Action string `yaml:"action"`
	Source string `yaml:"source"`
}

type ObjectSpec struct {
	ID         string          `yaml:"id"`
	Name       string          `yaml:"name"`
	Active     *bool           `yaml:"active"`
	Transform  TransformSpec   `yaml:"transform"`
	Components []ComponentSpec `yaml:"components"`
}

func (o ObjectSpec) IsActive() bool {
	return o.Active == nil || *o.Active
}

// TransformSpec places an object. Rotation is Euler radians, X pitch, Y yaw,
// Z roll.
type TransformSpec struct {
	Position Vec3Spec `yaml:"position"`
	Rotation Vec3Spec `yaml:"rotation"`
}

type Vec3Spec [3]float64

func (v Vec3Spec) Vec3() mgl64.Vec3 {
	return mgl64.Vec3(v)
}

type ComponentSpec struct {
	Name  string         `yaml:"name"`
	Props map[string]any `yaml:"props"`
}

// Validate checks what can be checked without a world: required fields and
// unique object ids.
func (s SceneSpec) Validate() error {
	for i, b := range s.Bindings {
		if strings.TrimSpace(b.Action) == "" || strings.TrimSpace(b.Source) == "" {
			return fmt.Errorf("binding %d needs both action and source", i)
		}
	}
	ids := make(map[string]bool, len(s.Objects))
	for i, o := range s.Objects {
		if o.ID != "" {
			if ids[o.ID] {
				return fmt.Errorf("object id %q used twice", o.ID)
			}
			ids[o.ID] = true
		}
		for j, c := range o.Components {
			if strings.TrimSpace(c.Name) == "" {
				return fmt.Errorf("object %d component %d has no name", i, j)
			}
		}
	}
	return nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
