package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/collider/internal/platform/tui"
	"github.com/vovakirdan/collider/internal/scene"
)

var (
	flagSSHAddr string
	flagHostKey string
)

var serveCmd = &cobra.Command{
	Use:   "serve <scene>",
	Short: "Serve the monitor over SSH",
	Long: `Start an SSH server that shows a live monitor of a scene.

Each SSH connection loads its own copy of the scene with its own detector,
so sessions do not affect each other. Nothing is recorded.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise uses monitor.host_key from the config, or ~/.collider/host_key

Examples:
  collider serve configs/scenes/crossing.yaml
  collider serve configs/scenes/crossing.yaml --ssh :2222

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.ExactArgs(1),
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port), default from config")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file, default from config")
}

func runServe(_ *cobra.Command, args []string) {
	path := args[0]

	// Fail fast on a broken scene instead of on the first connection
	loadScene(path)

	srvCfg := tui.DefaultSSHServerConfig()
	srvCfg.Address = cfg.Monitor.SSHAddress
	srvCfg.HostKeyPath = cfg.Monitor.HostKey
	srvCfg.IdleTimeout = cfg.Monitor.IdleTimeout
	srvCfg.Threaded = cfg.Physics.Threaded
	srvCfg.Physics = physicsOptions(nil)
	srvCfg.Monitor.Title = "collider - " + sceneName(path)
	srvCfg.Monitor.TickInterval = cfg.TickInterval()
	if flagSSHAddr != "" {
		srvCfg.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		srvCfg.HostKeyPath = flagHostKey
	}

	load := func() (*scene.Scene, error) {
		return scene.LoadFile(path)
	}

	server, err := tui.NewSSHServer(srvCfg, load, newLogger("collider-ssh"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Serving %s over SSH on %s\n", path, srvCfg.Address)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
