package accounts

import "go.uber.org/zap"

// Options configures coder behavior.
type Options struct {
	// Logger overrides the package logger for this coder.
	Logger *zap.Logger
	// Strict rejects buffers with bytes after the payload.
	Strict bool
}

// DefaultOptions returns default coder configuration.
func DefaultOptions() Options {
	return Options{}
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return Logger()
}
