package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sbel-gpu/dem-engine/dem"
	_ "github.com/sbel-gpu/dem-engine/dem/kernel"
)

var (
	sceneFile  string
	nUserCalls int
	logLevel   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scene for a number of user calls and print final metrics",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		scene, err := dem.LoadSceneConfig(sceneFile)
		if err != nil {
			logrus.Fatalf("failed to load scene: %v", err)
		}

		lattice := dem.LatticeParams{L: 1e-4, VoxelSize: 1000, NVXp2: 16, NVYp2: 16, NVZp2: 16}
		bp := dem.BruteForceBroadPhase{Lattice: lattice}
		clumps, analyticals, meshes := scene.CountByType()
		sys := dem.NewSystem(lattice, *scene, bp, clumps, analyticals, meshes)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sys.Start(ctx)

		for i := 0; i < nUserCalls; i++ {
			logrus.Debugf("running user call %d/%d", i+1, nUserCalls)
			sys.DoDynamics()
		}

		if err := sys.Stop(); err != nil {
			logrus.Fatalf("worker exited with error: %v", err)
		}

		logrus.Info(sys.Metrics.Print())
	},
}

func init() {
	runCmd.Flags().StringVar(&sceneFile, "scene", "scene.yaml", "Path to the scene configuration file")
	runCmd.Flags().IntVar(&nUserCalls, "calls", 1, "Number of user calls to drive")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd)
}
