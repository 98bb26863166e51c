package parser

import (
	"fmt"

	"parseview/internal/config"
	"parseview/internal/domain"
	"parseview/internal/port"
)

// ProviderFactory is a function that creates a DocumentParser from the vendor config.
type ProviderFactory func(cfg *config.VendorConfig) (port.DocumentParser, error)

// registry of parser provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a parser provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewParser creates a DocumentParser from the vendor config using the registered factory.
func NewParser(cfg *config.VendorConfig) (port.DocumentParser, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: unknown parser provider: %s", domain.ErrConfig, cfg.Provider)
	}
	return factory(cfg)
}
