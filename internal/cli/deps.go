package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"bananaledger/internal/config"
	"bananaledger/internal/generator"
	"bananaledger/internal/generator/providers"
	"bananaledger/internal/repository/postgres"
	"bananaledger/internal/service"
)

// DefaultDeps wires the commands to the real database and providers.
func DefaultDeps() Deps {
	return Deps{
		Fs:             afero.NewOsFs(),
		LoadConfig:     config.Load,
		NewCorrections: openCorrections,
		NewConversion:  buildConversion,
	}
}

func openCorrections(cfg *config.Config, log zerolog.Logger) (service.CorrectionService, func(), error) {
	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("opening correction store: %w", err)
	}
	svc := service.NewCorrectionService(postgres.NewCorrectionRepo(db), log)
	return svc, func() { _ = db.Close() }, nil
}

// buildConversion never archives: local runs are not uploaded.
func buildConversion(cfg *config.Config, corrections service.CorrectionService, log zerolog.Logger) (service.ConversionService, error) {
	providers.RegisterAll()
	gen, err := generator.NewFromConfig(&cfg.Generator)
	if err != nil {
		return nil, fmt.Errorf("initializing generator: %w", err)
	}
	return service.NewConversionService(
		gen, corrections, nil, afero.NewOsFs(), cfg.Conversion, config.S3Config{}, log,
	), nil
}
