package generator

import (
	"fmt"

	"bananaledger/internal/config"
	"bananaledger/internal/port"
)

// ProviderFactory creates a LedgerGenerator from a provider config.
type ProviderFactory func(cfg *config.GeneratorProviderConfig) (port.LedgerGenerator, error)

// registry of provider factories, populated via RegisterProvider at startup.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewGenerator creates a LedgerGenerator from a provider config using the registered factory.
func NewGenerator(cfg *config.GeneratorProviderConfig) (port.LedgerGenerator, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown generator provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewFromConfig builds the configured provider chain. A single provider is
// returned as-is; more than one is wrapped in a FallbackGenerator.
func NewFromConfig(cfg *config.GeneratorConfig) (port.LedgerGenerator, error) {
	chain := cfg.ProviderChain()
	gens := make([]port.LedgerGenerator, 0, len(chain))
	names := make([]string, 0, len(chain))
	for _, pc := range chain {
		g, err := NewGenerator(pc)
		if err != nil {
			return nil, fmt.Errorf("creating %s generator: %w", pc.Provider, err)
		}
		gens = append(gens, g)
		names = append(names, pc.Provider)
	}
	if len(gens) == 1 {
		return gens[0], nil
	}
	return NewFallbackGenerator(gens, names), nil
}
