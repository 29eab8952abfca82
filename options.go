package locator

import "go.uber.org/zap"

// Option configures a Provider.
type Option func(p *Provider)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.base = l
		}
	}
}
