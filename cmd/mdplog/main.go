// mdplog compiles MDP logic programs into factored state-space schemas:
// it classifies declared state fluents, validates the declaration set, and
// reports or exports the resulting schema.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose  bool
	declPred string
	logger   *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mdplog",
	Short: "mdplog - factored-MDP fluent schema compiler",
	Long: `mdplog reads an MDP logic program, classifies its declared state
fluents into independent binary variables and mutually exclusive
multi-valued groups, and emits the canonical factored state-space schema
consumed by state enumeration and probability injection.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&declPred, "declare", "", "override the declaration predicate name")
	rootCmd.AddCommand(inspectCmd, checkCmd, watchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
