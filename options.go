package gate

import "time"

// Option configures gate components.
type Option func(*options)

type options struct {
	codec  *TokenCodec
	now    func() time.Time
	logger Logger
}

// WithClock sets the wall clock used for expiration checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCodec sets the token codec.
func WithCodec(codec *TokenCodec) Option {
	return func(o *options) {
		if codec != nil {
			o.codec = codec
		}
	}
}

func applyOptions(opts ...Option) options {
	o := options{
		now:    time.Now,
		logger: defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.codec == nil {
		o.codec = NewTokenCodec()
	}
	return o
}
