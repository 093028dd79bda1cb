package ledger

import (
	"go.uber.org/zap"
)

type options struct {
	metrics Metrics
	logger  *zap.Logger
}

// Option configures a ledger service
type Option func(*options)

// WithMetrics reports committed business events to m
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	o.metrics = metricsOrNoop(o.metrics)
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}
