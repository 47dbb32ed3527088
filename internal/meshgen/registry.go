// Package meshgen builds simplified collision meshes for primitive shapes.
// Shapes register themselves in init() functions, allowing scene files to
// reference them by id without hardcoded dependencies.
package meshgen

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/collider/internal/core"
)

// ShapeSpec describes a primitive shape to tessellate.
// Which fields are used depends on the shape kind.
type ShapeSpec struct {
	Kind   string     // Shape id, e.g. "box" or "sphere"
	Size   mgl64.Vec3 // Box extents
	Radius float64    // Sphere/cylinder/capsule radius, box corner rounding
	Height float64    // Cylinder/capsule height along z

	// Cells is the marching cubes resolution along the longest axis.
	// Zero selects DefaultCells.
	Cells int
}

// Builder produces a collision mesh for a shape spec.
type Builder func(spec ShapeSpec) (core.Mesh, error)

// ShapeInfo contains metadata about a registered shape.
type ShapeInfo struct {
	ID          string
	Description string
}

type entry struct {
	build       Builder
	description string
}

var (
	builders = make(map[string]entry)
	mu       sync.RWMutex
)

// Register adds a shape builder to the registry.
// Panics if a shape with the same id is already registered.
func Register(id, description string, b Builder) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := builders[id]; exists {
		panic(fmt.Sprintf("meshgen: shape %q already registered", id))
	}
	builders[id] = entry{build: b, description: description}
}

// List returns all registered shapes, sorted by id.
func List() []ShapeInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]ShapeInfo, 0, len(builders))
	for id, e := range builders {
		result = append(result, ShapeInfo{ID: id, Description: e.description})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Lookup returns the metadata of a registered shape.
func Lookup(id string) (ShapeInfo, bool) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := builders[id]
	if !ok {
		return ShapeInfo{}, false
	}
	return ShapeInfo{ID: id, Description: e.description}, true
}

// Exists checks if a shape with the given id is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := builders[id]
	return ok
}

// Build tessellates the shape described by spec.
// Returns an error if the shape is unknown or its dimensions are invalid.
func Build(spec ShapeSpec) (core.Mesh, error) {
	mu.RLock()
	e, ok := builders[spec.Kind]
	mu.RUnlock()

	if !ok {
		return core.Mesh{}, fmt.Errorf("meshgen: unknown shape %q", spec.Kind)
	}

	m, err := e.build(spec)
	if err != nil {
		return core.Mesh{}, fmt.Errorf("meshgen: %s: %w", spec.Kind, err)
	}
	return m, nil
}
