package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpons/battarb/app"
	"github.com/mpons/battarb/config"
	coremetrics "github.com/mpons/battarb/core/metrics"
	"github.com/mpons/battarb/core/model"
)

var snapshotPath string

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Evaluate a single snapshot and print the decision",
	Long: "Reads one interval snapshot as JSON (from --snapshot or stdin), " +
		"runs the configured policy once and prints the decision to stdout.",
	RunE: decide,
}

func init() {
	decideCmd.Flags().StringVarP(&snapshotPath, "snapshot", "s", "", "snapshot JSON file (default stdin)")
	rootCmd.AddCommand(decideCmd)
}

func decide(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var in io.Reader = os.Stdin
	if snapshotPath != "" {
		f, err := os.Open(snapshotPath)
		if err != nil {
			return fmt.Errorf("open snapshot: %w", err)
		}
		defer f.Close()
		in = f
	}

	var raw model.RawSnapshot
	if err := json.NewDecoder(in).Decode(&raw); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	eval, err := app.NewEvaluator(cfg, coremetrics.NopSink{})
	if err != nil {
		return err
	}
	d := eval.Evaluate(raw)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
