package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"mdplog/internal/fluent"
	"mdplog/internal/logic"
	"mdplog/internal/mdp"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	inspectFormat    string
	inspectValuation bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <program.pl>",
	Short: "Compile a program and print its factored state-space schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := loadProgram(args[0])
		if err != nil {
			return err
		}

		m, err := mdp.New(model)
		if err != nil {
			return err
		}
		for _, w := range m.Warnings() {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}

		schema := m.StateSchema()
		logger.Debug("schema built",
			zap.Int("factors", len(schema.Factors())),
			zap.Int64("total_states", schema.TotalStates()))

		switch inspectFormat {
		case "text":
			fmt.Println(schema.Report())
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(schema.Doc()); err != nil {
				return err
			}
		case "yaml":
			enc := yaml.NewEncoder(os.Stdout)
			defer enc.Close()
			if err := enc.Encode(schema.Doc()); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown format %q (want text, json, or yaml)", inspectFormat)
		}

		if inspectValuation {
			printValuations(schema)
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", "text", "output format: text, json, or yaml")
	inspectCmd.Flags().BoolVar(&inspectValuation, "states", false, "enumerate every state valuation")
}

func printValuations(schema *fluent.Schema) {
	it := schema.Valuations()
	index := int64(0)
	for v, ok := it.Next(); ok; v, ok = it.Next() {
		var set []string
		for _, t := range schema.Flat() {
			if v[t.String()] == 1 {
				set = append(set, t.String())
			}
		}
		fmt.Printf("%6d  {%s}\n", index, strings.Join(set, ", "))
		index++
	}
}

// loadProgram parses the program at path into a logic model, applying the
// --declare override when set.
func loadProgram(path string) (*logic.Model, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}
	model, err := logic.ParseModel(string(src))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if declPred != "" {
		model.SetDeclarationPredicate(declPred)
	}
	return model, nil
}
