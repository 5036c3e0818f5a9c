package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bananaledger/internal/domain"
	"bananaledger/internal/generator"
)

func examplesCmd(deps Deps, logFor func(*cobra.Command) zerolog.Logger) *cobra.Command {
	var limit int
	var full bool

	c := &cobra.Command{
		Use:   "examples <source>",
		Short: "Print the correction examples that the next conversion for a source would receive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Conversion.MaxExamples
			}

			svc, closeFn, err := deps.NewCorrections(cfg, logFor(cmd))
			if err != nil {
				return err
			}
			defer closeFn()

			source := domain.NormalizeSource(args[0])
			examples, err := svc.RecentExamples(cmd.Context(), source, limit)
			if err != nil {
				return err
			}

			if full {
				fmt.Fprintln(cmd.OutOrStdout(), generator.BuildInstructions(source, examples))
				return nil
			}
			if len(examples) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no corrections stored for %s\n", source)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), generator.FormatExamples(source, examples))
			return nil
		},
	}

	c.Flags().IntVarP(&limit, "limit", "n", 0, "Number of examples (defaults to conversion.max_examples)")
	c.Flags().BoolVar(&full, "full", false, "Print the complete instructions, rules included")
	return c
}
