package scene

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/collider/internal/core"
	"github.com/vovakirdan/collider/internal/meshgen"
)

// YAMLScene represents the YAML structure of a scene file.
type YAMLScene struct {
	Bodies []YAMLBody `yaml:"bodies"`
}

// YAMLBody describes one body. Either Shape or Triangles must be set.
type YAMLBody struct {
	Name      string        `yaml:"name"`
	Shape     string        `yaml:"shape,omitempty"`
	Size      []float64     `yaml:"size,omitempty"`
	Radius    float64       `yaml:"radius,omitempty"`
	Height    float64       `yaml:"height,omitempty"`
	Cells     int           `yaml:"cells,omitempty"`
	Triangles [][][]float64 `yaml:"triangles,omitempty"`
	Position  []float64     `yaml:"position,omitempty"`
	Velocity  []float64     `yaml:"velocity,omitempty"`
}

// LoadFile reads and parses a YAML scene file.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: failed to read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene: %s: %w", path, err)
	}
	return s, nil
}

// Parse builds a scene from YAML. Bodies are added in file order, so a
// duplicate name is reported against its second occurrence.
func Parse(data []byte) (*Scene, error) {
	var ys YAMLScene
	if err := yaml.Unmarshal(data, &ys); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}

	s := New()
	for i, yb := range ys.Bodies {
		b, err := yb.toBody()
		if err != nil {
			return nil, fmt.Errorf("body %d (%q): %w", i, yb.Name, err)
		}
		if err := s.Add(b); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (yb YAMLBody) toBody() (Body, error) {
	pos, err := vec3OrZero(yb.Position)
	if err != nil {
		return Body{}, fmt.Errorf("position: %w", err)
	}
	vel, err := vec3OrZero(yb.Velocity)
	if err != nil {
		return Body{}, fmt.Errorf("velocity: %w", err)
	}

	var mesh core.Mesh
	switch {
	case yb.Shape != "" && len(yb.Triangles) > 0:
		return Body{}, fmt.Errorf("shape and triangles are mutually exclusive")
	case yb.Shape != "":
		size, err := vec3OrZero(yb.Size)
		if err != nil {
			return Body{}, fmt.Errorf("size: %w", err)
		}
		mesh, err = meshgen.Build(meshgen.ShapeSpec{
			Kind:   yb.Shape,
			Size:   size,
			Radius: yb.Radius,
			Height: yb.Height,
			Cells:  yb.Cells,
		})
		if err != nil {
			return Body{}, err
		}
	case len(yb.Triangles) > 0:
		mesh, err = parseTriangles(yb.Triangles)
		if err != nil {
			return Body{}, err
		}
	default:
		return Body{}, fmt.Errorf("no collision geometry (set shape or triangles)")
	}

	return Body{
		Name:     yb.Name,
		Collider: mesh,
		Position: pos,
		Velocity: vel,
	}, nil
}

func parseTriangles(raw [][][]float64) (core.Mesh, error) {
	tris := make([]core.Triangle, 0, len(raw))
	for i, t := range raw {
		if len(t) != 3 {
			return core.Mesh{}, fmt.Errorf("triangle %d: expected 3 vertices, got %d", i, len(t))
		}
		var tri core.Triangle
		for j, v := range t {
			p, err := vec3(v)
			if err != nil {
				return core.Mesh{}, fmt.Errorf("triangle %d vertex %d: %w", i, j, err)
			}
			tri[j] = p
		}
		tris = append(tris, tri)
	}
	return core.Mesh{Triangles: tris}, nil
}

func vec3(v []float64) (mgl64.Vec3, error) {
	if len(v) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(v))
	}
	return mgl64.Vec3{v[0], v[1], v[2]}, nil
}

func vec3OrZero(v []float64) (mgl64.Vec3, error) {
	if v == nil {
		return mgl64.Vec3{}, nil
	}
	return vec3(v)
}
