package internal

import "github.com/mvantol/ansuz/internal/enrich"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	enricher enrich.Enricher
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithEnricher overrides the config-selected enrichment delegate.
func WithEnricher(e enrich.Enricher) Option {
	return func(a *application) {
		a.enricher = e
	}
}
