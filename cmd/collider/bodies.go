package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/collider/internal/meshgen"
)

var bodiesCmd = &cobra.Command{
	Use:   "bodies <scene>",
	Short: "List the bodies of a scene",
	Long:  `Shows every body in a scene file with its position, velocity and triangle count.`,
	Args:  cobra.ExactArgs(1),
	Run:   runBodies,
}

var shapesCmd = &cobra.Command{
	Use:   "shapes",
	Short: "List available collision shapes",
	Long:  `Shows the shape names a scene file may use instead of explicit triangles.`,
	Args:  cobra.NoArgs,
	Run:   runShapes,
}

func runBodies(_ *cobra.Command, args []string) {
	sc := loadScene(args[0])
	snap := sc.Snapshot()

	if len(snap.Bodies) == 0 {
		fmt.Println("Scene has no bodies.")
		return
	}

	// Calculate column widths
	maxNameLen := 4 // "Name" header
	for _, b := range snap.Bodies {
		maxNameLen = max(maxNameLen, len(b.Name))
	}

	fmt.Printf("  %-*s  %-24s  %-24s  %s\n", maxNameLen, "Name", "Position", "Velocity", "Triangles")
	fmt.Printf("  %-*s  %-24s  %-24s  %s\n", maxNameLen, "----", "--------", "--------", "---------")

	for _, b := range snap.Bodies {
		fmt.Printf("  %-*s  %-24s  %-24s  %d\n",
			maxNameLen, b.Name,
			formatVec(b.Position[:]), formatVec(b.Velocity[:]),
			b.Collider.TriangleCount(),
		)
	}
}

func runShapes(_ *cobra.Command, _ []string) {
	shapes := meshgen.List()

	maxIDLen := 2 // "ID" header
	for _, s := range shapes {
		maxIDLen = max(maxIDLen, len(s.ID))
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Description")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----------")
	for _, s := range shapes {
		fmt.Printf("  %-*s  %s\n", maxIDLen, s.ID, s.Description)
	}
}

func formatVec(v []float64) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v[0], v[1], v[2])
}
