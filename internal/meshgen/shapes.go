package meshgen

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/collider/internal/core"
)

// DefaultCells is the default marching cubes resolution. Collision meshes
// are meant to be coarse; the collider cost grows with the square of the
// triangle count.
const DefaultCells = 12

// MaxCells caps the resolution a scene file may request.
const MaxCells = 64

var errNonPositive = errors.New("dimensions must be positive")

func init() {
	Register("box", "exact axis-aligned box (size)", buildBox)
	Register("rounded_box", "box with rounded edges (size, radius)", buildRoundedBox)
	Register("sphere", "sphere (radius)", buildSphere)
	Register("cylinder", "z-aligned cylinder (radius, height)", buildCylinder)
	Register("capsule", "z-aligned capsule (radius, height of the straight part)", buildCapsule)
}

func buildBox(spec ShapeSpec) (core.Mesh, error) {
	if spec.Size.X() <= 0 || spec.Size.Y() <= 0 || spec.Size.Z() <= 0 {
		return core.Mesh{}, errNonPositive
	}
	return core.BoxMesh(spec.Size), nil
}

func buildRoundedBox(spec ShapeSpec) (core.Mesh, error) {
	if spec.Size.X() <= 0 || spec.Size.Y() <= 0 || spec.Size.Z() <= 0 || spec.Radius < 0 {
		return core.Mesh{}, errNonPositive
	}
	s, err := sdf.Box3D(toV3(spec.Size), spec.Radius)
	if err != nil {
		return core.Mesh{}, fmt.Errorf("sdf.Box3D: %w", err)
	}
	return tessellate(s, spec.Cells), nil
}

func buildSphere(spec ShapeSpec) (core.Mesh, error) {
	if spec.Radius <= 0 {
		return core.Mesh{}, errNonPositive
	}
	s, err := sdf.Sphere3D(spec.Radius)
	if err != nil {
		return core.Mesh{}, fmt.Errorf("sdf.Sphere3D: %w", err)
	}
	return tessellate(s, spec.Cells), nil
}

func buildCylinder(spec ShapeSpec) (core.Mesh, error) {
	if spec.Radius <= 0 || spec.Height <= 0 {
		return core.Mesh{}, errNonPositive
	}
	s, err := sdf.Cylinder3D(spec.Height, spec.Radius, 0)
	if err != nil {
		return core.Mesh{}, fmt.Errorf("sdf.Cylinder3D: %w", err)
	}
	return tessellate(s, spec.Cells), nil
}

// buildCapsule unions a cylinder with a sphere at each end.
func buildCapsule(spec ShapeSpec) (core.Mesh, error) {
	if spec.Radius <= 0 || spec.Height <= 0 {
		return core.Mesh{}, errNonPositive
	}
	body, err := sdf.Cylinder3D(spec.Height, spec.Radius, 0)
	if err != nil {
		return core.Mesh{}, fmt.Errorf("sdf.Cylinder3D: %w", err)
	}
	cap0, err := sdf.Sphere3D(spec.Radius)
	if err != nil {
		return core.Mesh{}, fmt.Errorf("sdf.Sphere3D: %w", err)
	}
	half := spec.Height / 2
	top := sdf.Transform3D(cap0, sdf.Translate3d(v3.Vec{X: 0, Y: 0, Z: half}))
	bottom := sdf.Transform3D(cap0, sdf.Translate3d(v3.Vec{X: 0, Y: 0, Z: -half}))
	return tessellate(sdf.Union3D(body, top, bottom), spec.Cells), nil
}

// tessellate converts an SDF solid to a collision mesh using marching cubes.
func tessellate(s sdf.SDF3, cells int) core.Mesh {
	if cells <= 0 {
		cells = DefaultCells
	}
	if cells > MaxCells {
		cells = MaxCells
	}

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	tris := make([]core.Triangle, 0, len(triangles))
	for _, tri := range triangles {
		var t core.Triangle
		for j := 0; j < 3; j++ {
			v := tri[j]
			t[j] = mgl64.Vec3{v.X, v.Y, v.Z}
		}
		tris = append(tris, t)
	}
	return core.Mesh{Triangles: tris}
}

func toV3(v mgl64.Vec3) v3.Vec {
	return v3.Vec{X: v.X(), Y: v.Y(), Z: v.Z()}
}
