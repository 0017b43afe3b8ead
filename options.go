package agent

import "context"

type Option func(*Options)

type Options struct {
	RecallLimit  int
	SystemPrompt string
	Context      context.Context
}

// WithRecallLimit caps how many remembered exchanges get prepended to
// each prompt. Zero disables recall.
func WithRecallLimit(limit int) Option {
	return func(o *Options) {
		o.RecallLimit = limit
	}
}

func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		RecallLimit: 5,
		Context:     context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
