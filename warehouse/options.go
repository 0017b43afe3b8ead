package warehouse

import (
	"context"
	"database/sql"
)

type Option func(*Options)

type Options struct {
	Location string
	Conn     *sql.DB
	Context  context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

// WithConn hands the session an already-open connection, e.g. a mock.
func WithConn(conn *sql.DB) Option {
	return func(o *Options) {
		o.Conn = conn
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
