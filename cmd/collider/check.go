package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/collider/internal/physics"
)

var checkCmd = &cobra.Command{
	Use:   "check <scene> <a> <b>",
	Short: "Test whether two bodies collide",
	Long: `Loads a scene and runs the mesh test for two bodies immediately,
without starting the background worker. Exits with status 2 when the
bodies do not collide.

Examples:
  collider check configs/scenes/crossing.yaml left right`,
	Args: cobra.ExactArgs(3),
	Run:  runCheck,
}

var pointCmd = &cobra.Command{
	Use:   "point <x> <y> <origin-x> <origin-y> <width> <height>",
	Short: "Test a point against a rectangle",
	Long: `Reports whether a point lies strictly inside a rectangle. Points on
the edge are outside. Exits with status 2 when the point is outside.

Examples:
  collider point 5 5 0 0 10 10`,
	Args: cobra.ExactArgs(6),
	Run:  runPoint,
}

func runCheck(_ *cobra.Command, args []string) {
	sc := loadScene(args[0])
	a, b := args[1], args[2]

	for _, name := range []string{a, b} {
		if _, ok := sc.Get(name); !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown body %q\n", name)
			fmt.Fprintf(os.Stderr, "Run 'collider bodies %s' to see its bodies.\n", args[0])
			os.Exit(1)
		}
	}

	phys := physics.New(physicsOptions(nil))
	if err := phys.Init(sc, false); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer phys.Shutdown()

	if phys.Collide(a, b) {
		fmt.Printf("%s and %s collide\n", a, b)
		return
	}
	fmt.Printf("%s and %s do not collide\n", a, b)
	phys.Shutdown()
	os.Exit(2)
}

func runPoint(_ *cobra.Command, args []string) {
	vals := make([]float64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: argument %d: %v\n", i+1, err)
			os.Exit(1)
		}
		vals[i] = v
	}

	point := mgl64.Vec2{vals[0], vals[1]}
	origin := mgl64.Vec2{vals[2], vals[3]}
	size := mgl64.Vec2{vals[4], vals[5]}

	if physics.New(physics.DefaultOptions()).CollidePoint(point, origin, size) {
		fmt.Println("inside")
		return
	}
	fmt.Println("outside")
	os.Exit(2)
}
