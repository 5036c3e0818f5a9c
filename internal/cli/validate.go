package cli

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"bananaledger/internal/ledger"
)

func validateCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file|->",
		Short: "Check a ledger file against the Banana import grammar (no network)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, deps.Fs, args[0])
			if err != nil {
				return err
			}

			if err := ledger.Validate(string(data)); err != nil {
				return err
			}

			if ledger.IsErrorDocument(ledger.SplitLines(string(data))) {
				fmt.Fprintln(cmd.OutOrStdout(), "OK (error document)")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
}

// readInput reads a file, or stdin when name is "-".
func readInput(cmd *cobra.Command, fs afero.Fs, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}
