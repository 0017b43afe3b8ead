package chat

import (
	"context"
	"io"
	"os"
)

type Option func(*Options)

type Options struct {
	Input   io.Reader
	Output  io.Writer
	History *History
	Context context.Context
}

func WithInput(in io.Reader) Option {
	return func(o *Options) {
		o.Input = in
	}
}

func WithOutput(out io.Writer) Option {
	return func(o *Options) {
		o.Output = out
	}
}

func WithHistory(history *History) Option {
	return func(o *Options) {
		o.History = history
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Input:   os.Stdin,
		Output:  os.Stdout,
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
