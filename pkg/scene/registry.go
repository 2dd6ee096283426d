// Package scene holds the catalogue of scene objects a graph document can
// reference by name (meshes, cameras, lights, sounds).
//
// A Registry is built per project and handed to compilation through
// context.Context; nothing in this package is process-global.
package scene

import (
	"context"
	"fmt"
	"sort"
)

// Category groups scene objects of one family.
type Category string

const (
	Meshes  Category = "mesh"
	Cameras Category = "camera"
	Lights  Category = "light"
	Sounds  Category = "sound"
)

// Object is a named scene object. Class is the engine class name used for
// casts and imports, for example "Mesh" or "FreeCamera".
type Object struct {
	Name  string
	Class string
}

// Registry indexes scene objects by category and name.
type Registry struct {
	objects map[Category]map[string]Object
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{objects: make(map[Category]map[string]Object)}
}

// Add registers obj under cat. Names are unique within a category.
func (r *Registry) Add(cat Category, obj Object) error {
	if obj.Name == "" {
		return fmt.Errorf("%s name must not be empty", cat)
	}
	byName, ok := r.objects[cat]
	if !ok {
		byName = make(map[string]Object)
		r.objects[cat] = byName
	}
	if _, dup := byName[obj.Name]; dup {
		return fmt.Errorf("duplicate %s %q", cat, obj.Name)
	}
	byName[obj.Name] = obj
	return nil
}

// Lookup returns the object named name in cat.
func (r *Registry) Lookup(cat Category, name string) (Object, bool) {
	if r == nil {
		return Object{}, false
	}
	obj, ok := r.objects[cat][name]
	return obj, ok
}

// Known reports whether the registry lists any object of cat. Generators only
// check names against categories the project actually describes.
func (r *Registry) Known(cat Category) bool {
	return r != nil && len(r.objects[cat]) > 0
}

// Names returns the sorted object names of cat.
func (r *Registry) Names(cat Category) []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.objects[cat]))
	for name := range r.objects[cat] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type key struct{}

// WithRegistry returns a context carrying r.
func WithRegistry(ctx context.Context, r *Registry) context.Context {
	return context.WithValue(ctx, key{}, r)
}

// FromContext returns the registry carried by ctx, or an empty one.
func FromContext(ctx context.Context) *Registry {
	if ctx != nil {
		if r, ok := ctx.Value(key{}).(*Registry); ok && r != nil {
			return r
		}
	}
	return NewRegistry()
}
