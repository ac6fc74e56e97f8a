package main

import (
	"errors"
	"fmt"
	"os"

	"mdplog/internal/fluent"
	"mdplog/internal/mdp"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <program.pl>",
	Short: "Validate a program's fluent declarations without emitting a schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkProgram(args[0])
	},
}

// checkProgram compiles the program and reports every diagnostic. It
// returns a non-nil error when the program fails validation.
func checkProgram(path string) error {
	model, err := loadProgram(path)
	if err != nil {
		return err
	}

	m, err := mdp.New(model)
	if err != nil {
		if errors.Is(err, fluent.ErrBuild) {
			fmt.Fprint(os.Stderr, err.Error())
			return fmt.Errorf("%s failed validation", path)
		}
		return err
	}

	for _, w := range m.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	schema := m.StateSchema()
	fmt.Printf("%s: ok (%d fluents, %d states, %d warnings)\n",
		path, len(schema.Flat()), schema.TotalStates(), len(m.Warnings()))
	return nil
}
