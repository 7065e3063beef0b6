package labeling

import (
	"go.uber.org/zap"
)

// DefaultWorkers decodes batch items sequentially.
const DefaultWorkers = 1

const panicWorkersInvalid = "labeling: WithWorkers: n must be >= 1"

// Option configures a Labeler.
type Option func(*Options)

// Options is the resolved Labeler configuration.
type Options struct {
	workers int
	logger  *zap.Logger
}

// WithWorkers decodes up to n batch items concurrently. Items are
// independent, so results are identical to sequential decoding.
// Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(panicWorkersInvalid)
	}

	return func(o *Options) { o.workers = n }
}

// WithLogger sets the logger used for per-batch debug output.
// A nil logger keeps the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

func gatherOptions(user ...Option) Options {
	o := Options{
		workers: DefaultWorkers,
		logger:  zap.NewNop(),
	}
	for _, set := range user {
		set(&o)
	}

	return o
}
