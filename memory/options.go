package memory

import (
	"context"

	"github.com/wyh7/MLE-agent/memory/embedder"
)

type Option func(*Options)

type Options struct {
	Location   string
	Collection string
	Embedder   embedder.Embedder
	VectorSize int
	Distance   string
	ApiKey     string
	AllowReset bool
	Context    context.Context
}

// WithLocation points a backend at its store: a project directory for
// embedded backends, a base URL or DSN for remote ones.
func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithCollection(collection string) Option {
	return func(o *Options) {
		o.Collection = collection
	}
}

func WithEmbedder(embedder embedder.Embedder) Option {
	return func(o *Options) {
		o.Embedder = embedder
	}
}

func WithVectorSize(size int) Option {
	return func(o *Options) {
		o.VectorSize = size
	}
}

func WithDistance(distance string) Option {
	return func(o *Options) {
		o.Distance = distance
	}
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

// WithAllowReset opts in to Reset on backends that refuse it by default.
func WithAllowReset(allow bool) Option {
	return func(o *Options) {
		o.AllowReset = allow
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Collection: DefaultCollection,
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type AddOption func(*AddOptions)

type AddOptions struct {
	Collection string
	Ids        []string
	Context    context.Context
}

func WithAddCollection(collection string) AddOption {
	return func(o *AddOptions) {
		o.Collection = collection
	}
}

// WithAddIds supplies explicit record ids; the list must match the items
// in length. Without it, ids are generated.
func WithAddIds(ids []string) AddOption {
	return func(o *AddOptions) {
		o.Ids = ids
	}
}

func NewAddOptions(opts ...AddOption) AddOptions {
	options := AddOptions{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type QueryOption func(*QueryOptions)

type QueryOptions struct {
	Collection string
	Limit      int
	Context    context.Context
}

func WithQueryCollection(collection string) QueryOption {
	return func(o *QueryOptions) {
		o.Collection = collection
	}
}

func WithQueryLimit(limit int) QueryOption {
	return func(o *QueryOptions) {
		o.Limit = limit
	}
}

func NewQueryOptions(opts ...QueryOption) QueryOptions {
	options := QueryOptions{
		Limit:   5,
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type GetOption func(*GetOptions)

type GetOptions struct {
	Collection string
	Context    context.Context
}

func WithGetCollection(collection string) GetOption {
	return func(o *GetOptions) {
		o.Collection = collection
	}
}

func NewGetOptions(opts ...GetOption) GetOptions {
	options := GetOptions{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type PeekOption func(*PeekOptions)

type PeekOptions struct {
	Collection string
	Limit      int
	Context    context.Context
}

func WithPeekCollection(collection string) PeekOption {
	return func(o *PeekOptions) {
		o.Collection = collection
	}
}

func WithPeekLimit(limit int) PeekOption {
	return func(o *PeekOptions) {
		o.Limit = limit
	}
}

func NewPeekOptions(opts ...PeekOption) PeekOptions {
	options := PeekOptions{
		Limit:   20,
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type DeleteOption func(*DeleteOptions)

type DeleteOptions struct {
	Collection string
	Context    context.Context
}

func WithDeleteCollection(collection string) DeleteOption {
	return func(o *DeleteOptions) {
		o.Collection = collection
	}
}

func NewDeleteOptions(opts ...DeleteOption) DeleteOptions {
	options := DeleteOptions{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type DropOption func(*DropOptions)

type DropOptions struct {
	Collection string
	Context    context.Context
}

func WithDropCollection(collection string) DropOption {
	return func(o *DropOptions) {
		o.Collection = collection
	}
}

func NewDropOptions(opts ...DropOption) DropOptions {
	options := DropOptions{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type CountOption func(*CountOptions)

type CountOptions struct {
	Collection string
	Context    context.Context
}

func WithCountCollection(collection string) CountOption {
	return func(o *CountOptions) {
		o.Collection = collection
	}
}

func NewCountOptions(opts ...CountOption) CountOptions {
	options := CountOptions{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
