package cli

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"bananaledger/internal/domain"
	"bananaledger/internal/export"
	"bananaledger/internal/ledger"
	"bananaledger/internal/service"
)

const (
	formatText = "text"
	formatCSV  = "csv"
	formatXLSX = "xlsx"
)

func convertCmd(deps Deps, logFor func(*cobra.Command) zerolog.Logger) *cobra.Command {
	var source string
	var format string
	var out string
	var noExamples bool

	c := &cobra.Command{
		Use:   "convert <statement.pdf>",
		Short: "Convert a payout statement into a Banana ledger using the configured providers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatText && format != formatCSV && format != formatXLSX {
				return fmt.Errorf("unknown format %q (want text, csv or xlsx)", format)
			}
			if format == formatXLSX && out == "" {
				return fmt.Errorf("--out is required for xlsx output")
			}

			data, err := afero.ReadFile(deps.Fs, args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			log := logFor(cmd)

			var corrections service.CorrectionService
			if !noExamples {
				svc, closeFn, err := deps.NewCorrections(cfg, log)
				if err != nil {
					return err
				}
				defer closeFn()
				corrections = svc
			}

			conv, err := deps.NewConversion(cfg, corrections, log)
			if err != nil {
				return err
			}

			result, err := conv.Convert(cmd.Context(), &service.ConvertInput{
				FileBytes:   data,
				ContentType: http.DetectContentType(data),
				FileName:    filepath.Base(args[0]),
				Source:      source,
			})
			if err != nil {
				return err
			}

			log.Info().
				Str("source", string(result.Source)).
				Str("fingerprint", result.Fingerprint).
				Int("attempts", result.Attempts).
				Msg("convert: ledger generated")

			rendered, err := render(result, format)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(rendered)
				return err
			}
			if err := afero.WriteFile(deps.Fs, out, rendered, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
			return nil
		},
	}

	c.Flags().StringVarP(&source, "source", "s", "", "Statement source (smood, uber, smartbox); inferred from the file name if omitted")
	c.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, csv or xlsx")
	c.Flags().StringVarP(&out, "out", "o", "", "Write output to this file instead of stdout")
	c.Flags().BoolVar(&noExamples, "no-examples", false, "Skip the correction store; no few-shot examples are sent")
	return c
}

func render(result *domain.Conversion, format string) ([]byte, error) {
	if format == formatText {
		return []byte(result.Text + "\n"), nil
	}
	if result.IsErrorDocument {
		return nil, fmt.Errorf("%w: %s", domain.ErrErrorDocument, result.Text)
	}

	lines := result.Lines
	if len(lines) == 0 {
		lines = ledger.Normalize(result.Text)
	}

	var write func(io.Writer, []string) error = export.WriteCSV
	if format == formatXLSX {
		write = export.WriteXLSX
	}
	var buf bytes.Buffer
	if err := write(&buf, lines); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
