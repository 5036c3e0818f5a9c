// Package cli implements bananactl, the operator command line for the
// statement converter.
package cli

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"bananaledger/internal/config"
	"bananaledger/internal/logger"
	"bananaledger/internal/service"
)

// Deps holds the collaborators the commands need. Tests replace the
// constructors; Execute uses DefaultDeps.
type Deps struct {
	Fs         afero.Fs
	LoadConfig func() (*config.Config, error)

	// NewCorrections opens the correction store. The returned func releases it.
	NewCorrections func(cfg *config.Config, log zerolog.Logger) (service.CorrectionService, func(), error)

	// NewConversion builds the conversion pipeline. corrections may be nil.
	NewConversion func(cfg *config.Config, corrections service.CorrectionService, log zerolog.Logger) (service.ConversionService, error)
}

func Execute() {
	cmd := NewRootCmd(DefaultDeps())
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd assembles bananactl with its subcommands.
func NewRootCmd(deps Deps) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:          "bananactl",
		Short:        "Convert payout statements into Banana ledgers and inspect corrections",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging on stderr")

	logFor := func(c *cobra.Command) zerolog.Logger {
		return newLogger(c.ErrOrStderr(), debug)
	}

	cmd.AddCommand(validateCmd(deps))
	cmd.AddCommand(convertCmd(deps, logFor))
	cmd.AddCommand(examplesCmd(deps, logFor))
	return cmd
}

func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := "warn"
	if debug {
		level = "debug"
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(logger.ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}
