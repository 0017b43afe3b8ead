package generator

import "context"

// Generator produces completions from a hosted model: one-shot via
// Generate, or incrementally via Stream.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Stream(ctx context.Context, prompt string) (Stream, error)
}

// Stream yields completion chunks. Recv returns io.EOF once the model
// is done; callers own Close.
type Stream interface {
	Recv() (Chunk, error)
	Close() error
}

type Chunk struct {
	Content      string
	FinishReason string
}
