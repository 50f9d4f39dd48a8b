package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/starsheet/internal/game/stats"
	"github.com/cory-johannsen/starsheet/internal/importer/hephaistos"
)

func newComputeCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute statistics for a saved character document",
		Long: `Decode a Hephaistos character document saved to disk (any supported revision)
and print its computed statistics as YAML. No configuration or network access is needed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompute(cmd.OutOrStdout(), file, zap.NewNop())
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to a character JSON document")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// runCompute decodes the document at path and writes its statistics to w.
func runCompute(w io.Writer, path string, logger *zap.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading character document: %w", err)
	}
	rec, err := hephaistos.Decode(raw)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(stats.Compute(rec, logger)); err != nil {
		return fmt.Errorf("encoding statistics: %w", err)
	}
	return enc.Close()
}
