// Package providers registers every built-in ledger generator with the
// generator registry.
package providers

import (
	"bananaledger/internal/config"
	"bananaledger/internal/generator"
	"bananaledger/internal/generator/claude"
	"bananaledger/internal/generator/gemini"
	"bananaledger/internal/generator/openai"
	"bananaledger/internal/port"
)

// Provider names accepted in generator configuration.
const (
	OpenAI = "openai"
	Claude = "claude"
	Gemini = "gemini"
)

// RegisterAll makes the openai, claude and gemini providers available to
// generator.NewFromConfig.
func RegisterAll() {
	generator.RegisterProvider(OpenAI, func(cfg *config.GeneratorProviderConfig) (port.LedgerGenerator, error) {
		return openai.NewGenerator(cfg), nil
	})
	generator.RegisterProvider(Claude, func(cfg *config.GeneratorProviderConfig) (port.LedgerGenerator, error) {
		return claude.NewGenerator(cfg), nil
	})
	generator.RegisterProvider(Gemini, func(cfg *config.GeneratorProviderConfig) (port.LedgerGenerator, error) {
		g, err := gemini.NewGenerator(cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	})
}
