package ecs

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Catalog is the table of component descriptors objects attach from.
type Catalog struct {
	mu          sync.RWMutex
	descriptors map[string]Descriptor
}

func NewCatalog() *Catalog {
	return &Catalog{descriptors: map[string]Descriptor{}}
}

// Register adds d. Names are unique within a catalog.
func (c *Catalog) Register(d Descriptor) error {
	if err := validateDescriptor(&d); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.descriptors[d.Name]; ok {
		return fmt.Errorf("ecs: register %q: %w", d.Name, ErrDuplicateName)
	}
	c.descriptors[d.Name] = d
	return nil
}

// Replace adds d or overwrites an existing descriptor of the same name.
// Already attached instances keep the component they were built with.
func (c *Catalog) Replace(d Descriptor) error {
	_, _, err := c.Swap(d)
	return err
}

// Swap is Replace that also returns the descriptor d displaced, if any.
func (c *Catalog) Swap(d Descriptor) (Descriptor, bool, error) {
	if err := validateDescriptor(&d); err != nil {
		return Descriptor{}, false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, ok := c.descriptors[d.Name]
	c.descriptors[d.Name] = d
	return prev, ok, nil
}

// Remove drops a descriptor. Attached instances are not affected.
func (c *Catalog) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.descriptors[name]
	delete(c.descriptors, name)
	return ok
}

func (c *Catalog) Lookup(name string) (Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.descriptors[name]
	return d, ok
}

func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.descriptors))
	for name := range c.descriptors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validateDescriptor(d *Descriptor) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidDescriptor)
	}
	if d.New == nil {
		return fmt.Errorf("%w: %q has no factory", ErrInvalidDescriptor, d.Name)
	}
	for _, dep := range d.Dependencies {
		if dep == d.Name {
			return fmt.Errorf("ecs: register %q: depends on itself: %w", d.Name, ErrBadDependency)
		}
	}
	d.Dependencies = append([]string(nil), d.Dependencies...)
	return nil
}
