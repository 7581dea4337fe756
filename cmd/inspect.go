package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sbel-gpu/dem-engine/dem/output"
)

var (
	inspectIn  string
	inspectOut string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Dump a binary columnar snapshot as CSV",
	Run: func(cmd *cobra.Command, args []string) {
		in, err := os.Open(inspectIn)
		if err != nil {
			logrus.Fatalf("failed to open snapshot: %v", err)
		}
		defer in.Close()

		snap, err := output.ReadBinaryColumnar(in)
		if err != nil {
			logrus.Fatalf("failed to read snapshot: %v", err)
		}

		out := os.Stdout
		if inspectOut != "" {
			f, err := os.Create(inspectOut)
			if err != nil {
				logrus.Fatalf("failed to create output file: %v", err)
			}
			defer f.Close()
			out = f
		}

		if err := output.WriteCSV(out, snap, 0); err != nil {
			logrus.Fatalf("failed to write csv: %v", err)
		}
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectIn, "in", "", "Path to a binary columnar snapshot file")
	inspectCmd.Flags().StringVar(&inspectOut, "out", "", "Path to write CSV output (default stdout)")
	inspectCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(inspectCmd)
}
