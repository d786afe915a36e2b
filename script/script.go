// Package script turns tengo and lua source files into ecs components.
//
// A component script declares a unique name, the sibling components it reads
// and up to three hooks, each called as hook(engine, state):
//
//	name := "orbit_camera"
//	dependencies := ["camera_input"]
//
//	init := func(engine, state) { state.distance = 5.0 }
//	update := func(engine, state) { ... }
//	deinit := func(engine, state) { }
//
// The lua form uses globals and functions of the same names. State starts as
// a copy of the attach properties and is the only value that survives
// between calls. Its keys that do not start with "_" are what siblings see
// through engine.component(name).
package script

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/milk9111/gamify/ecs"
	"go.uber.org/zap"
)

var (
	ErrUnsupported  = errors.New("script: unsupported script type")
	ErrInvalid      = errors.New("script: invalid component script")
	ErrUnexportable = errors.New("script: state cannot be exported")
)

// maxExportDepth bounds how deeply nested exported state may be. Deeper
// values, self references included, fault the exporting component.
const maxExportDepth = 32

var errExportDepth = fmt.Errorf("%w: nested deeper than %d levels", ErrUnexportable, maxExportDepth)

var hookNames = []string{"init", "update", "deinit"}

type options struct {
	log *zap.Logger
}

type Option func(*options)

func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// IsScript reports whether path has a script extension.
func IsScript(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tengo", ".lua":
		return true
	}
	return false
}

// Describe compiles src and returns the descriptor it declares. The path
// extension picks the backend.
func Describe(path string, src []byte, opts ...Option) (ecs.Descriptor, error) {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".tengo":
		return describeTengo(path, src, o)
	case ".lua":
		return describeLua(path, src, o)
	}
	return ecs.Descriptor{}, fmt.Errorf("%w: %s", ErrUnsupported, path)
}

// Register describes src and adds it to catalog.
func Register(catalog *ecs.Catalog, path string, src []byte, opts ...Option) (ecs.Descriptor, error) {
	d, err := Describe(path, src, opts...)
	if err != nil {
		return ecs.Descriptor{}, err
	}
	if err := catalog.Register(d); err != nil {
		return ecs.Descriptor{}, fmt.Errorf("script: register %s: %w", path, err)
	}
	return d, nil
}

// Reload describes src and replaces any descriptor of the same name.
// Objects attached afterwards get the new code. The returned undo puts the
// catalog back the way it was.
func Reload(catalog *ecs.Catalog, path string, src []byte, opts ...Option) (ecs.Descriptor, func(), error) {
	d, err := Describe(path, src, opts...)
	if err != nil {
		return ecs.Descriptor{}, nil, err
	}
	prev, existed, err := catalog.Swap(d)
	if err != nil {
		return ecs.Descriptor{}, nil, fmt.Errorf("script: reload %s: %w", path, err)
	}
	undo := func() {
		if existed {
			_ = catalog.Replace(prev)
			return
		}
		catalog.Remove(d.Name)
	}
	return d, undo, nil
}

func checkDeclaration(path, name string, deps []string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: %s declares no name", ErrInvalid, path)
	}
	for _, dep := range deps {
		if strings.TrimSpace(dep) == "" {
			return "", fmt.Errorf("%w: %s has an empty dependency", ErrInvalid, path)
		}
	}
	return name, nil
}

func exported(key string) bool {
	return key != "" && !strings.HasPrefix(key, "_")
}
