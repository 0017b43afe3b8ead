package anthropic

import (
	"context"
	"errors"
	"io"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/wyh7/MLE-agent/generator"
)

type anthropicGenerator struct {
	options generator.Options
	client  *anthropic.Client
}

func (g *anthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	rsp, err := g.client.Messages.New(ctx, g.request(prompt))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, content := range rsp.Content {
		if text, ok := content.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}

	result := b.String()
	if len(result) == 0 {
		return "", errors.New("no response from Anthropic")
	}

	return result, nil
}

func (g *anthropicGenerator) Stream(ctx context.Context, prompt string) (generator.Stream, error) {
	stream := g.client.Messages.NewStreaming(ctx, g.request(prompt))

	return &anthropicStream{stream: stream}, nil
}

func (g *anthropicGenerator) request(prompt string) anthropic.MessageNewParams {
	fullPrompt := prompt
	if len(g.options.PromptPrefix) > 0 {
		fullPrompt = g.options.PromptPrefix + "\n" + prompt
	}

	return anthropic.MessageNewParams{
		Model:     anthropic.Model(g.options.Model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(fullPrompt)),
		},
	}
}

type anthropicStream struct {
	stream *ssestream.Stream[anthropic.MessageStreamEventUnion]
}

func (s *anthropicStream) Recv() (generator.Chunk, error) {
	for s.stream.Next() {
		event := s.stream.Current()

		switch evt := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if delta, ok := evt.Delta.AsAny().(anthropic.TextDelta); ok {
				return generator.Chunk{Content: delta.Text}, nil
			}
		case anthropic.MessageStopEvent:
			return generator.Chunk{FinishReason: "stop"}, nil
		}
	}

	if err := s.stream.Err(); err != nil {
		return generator.Chunk{}, err
	}

	return generator.Chunk{}, io.EOF
}

func (s *anthropicStream) Close() error {
	return s.stream.Close()
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &anthropicGenerator{
		options: options,
	}

	client := anthropic.NewClient(
		anthropicopt.WithAPIKey(options.ApiKey),
	)

	g.client = &client

	return g
}
