package sqlgen

import "context"

type Option func(*Options)

type Options struct {
	Template string
	Context  context.Context
}

// WithTemplate overrides the prompt template; it must contain a single
// %s verb for the user input.
func WithTemplate(template string) Option {
	return func(o *Options) {
		o.Template = template
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Template: defaultTemplate,
		Context:  context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
