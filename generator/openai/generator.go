package openai

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
	"github.com/wyh7/MLE-agent/generator"
)

type openAIGenerator struct {
	options generator.Options
	client  *openai.Client
}

func (g *openAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	rsp, err := g.client.CreateChatCompletion(ctx, g.request(prompt))
	if err != nil {
		return "", err
	}

	if len(rsp.Choices) == 0 || len(rsp.Choices[0].Message.Content) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	return rsp.Choices[0].Message.Content, nil
}

func (g *openAIGenerator) Stream(ctx context.Context, prompt string) (generator.Stream, error) {
	req := g.request(prompt)
	req.Stream = true

	stream, err := g.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, err
	}

	return &openAIStream{stream: stream}, nil
}

func (g *openAIGenerator) request(prompt string) openai.ChatCompletionRequest {
	fullPrompt := prompt
	if len(g.options.PromptPrefix) > 0 {
		fullPrompt = g.options.PromptPrefix + "\n" + prompt
	}

	return openai.ChatCompletionRequest{
		Model: g.options.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fullPrompt,
			},
		},
	}
}

type openAIStream struct {
	stream *openai.ChatCompletionStream
}

func (s *openAIStream) Recv() (generator.Chunk, error) {
	rsp, err := s.stream.Recv()
	if err != nil {
		// io.EOF marks the end of the stream
		return generator.Chunk{}, err
	}

	if len(rsp.Choices) == 0 {
		return generator.Chunk{}, nil
	}

	return generator.Chunk{
		Content:      rsp.Choices[0].Delta.Content,
		FinishReason: string(rsp.Choices[0].FinishReason),
	}, nil
}

func (s *openAIStream) Close() error {
	return s.stream.Close()
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &openAIGenerator{
		options: options,
	}

	client := openai.NewClient(options.ApiKey)

	g.client = client

	return g
}
