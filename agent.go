package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/wyh7/MLE-agent/chat"
	"github.com/wyh7/MLE-agent/generator"
	"github.com/wyh7/MLE-agent/memory"
)

// Agent wires a generator to the memory facade: exchanges similar to the
// latest user message are recalled and prepended to the prompt, and each
// completed exchange is written back so later sessions can find it.
type Agent struct {
	memory    memory.Memory
	generator generator.Generator
	options   Options
}

// Stream implements chat.Completer. The returned stream accumulates the
// chunks it yields and writes the completed exchange back to memory once
// the model is done, so later turns and sessions can recall it.
func (a *Agent) Stream(ctx context.Context, transcript []chat.Message) (generator.Stream, error) {
	prompt, err := a.buildPrompt(ctx, transcript)
	if err != nil {
		return nil, err
	}

	stream, err := a.generator.Stream(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &rememberingStream{
		stream: stream,
		agent:  a,
		ctx:    ctx,
		input:  latestUserMessage(transcript),
	}, nil
}

// Respond is the one-shot path: recall, generate, remember.
func (a *Agent) Respond(ctx context.Context, input string) (string, error) {
	if len(strings.TrimSpace(input)) == 0 {
		return "", errors.New("user input is required")
	}

	transcript := []chat.Message{{Role: chat.RoleUser, Content: input}}

	prompt, err := a.buildPrompt(ctx, transcript)
	if err != nil {
		return "", err
	}

	result, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	if _, err := a.Remember(ctx, input, result); err != nil {
		slog.WarnContext(ctx, "failed to remember exchange", "error", err)
	}

	return result, nil
}

// Remember stores one completed exchange and returns the assigned ids.
func (a *Agent) Remember(ctx context.Context, query string, response string) ([]string, error) {
	return a.memory.Add(ctx, []memory.Item{{Query: query, Response: response}})
}

func (a *Agent) buildPrompt(ctx context.Context, transcript []chat.Message) (string, error) {
	var sb strings.Builder

	if len(a.options.SystemPrompt) > 0 {
		sb.WriteString(a.options.SystemPrompt)
		sb.WriteString("\n\n")
	}

	input := latestUserMessage(transcript)

	if len(input) > 0 && a.options.RecallLimit > 0 {
		results, err := a.memory.Query(
			ctx,
			[]string{input},
			memory.WithQueryLimit(a.options.RecallLimit),
		)
		if err != nil {
			return "", fmt.Errorf("memory error: %w", err)
		}

		var recalled []memory.Record
		if len(results) > 0 {
			recalled = results[0]
		}

		if len(recalled) > 0 {
			sb.WriteString("Relevant past exchanges:\n")
			for _, rec := range recalled {
				sb.WriteString("Q: ")
				sb.WriteString(rec.Text)
				sb.WriteString("\nA: ")
				sb.WriteString(recordResponse(rec))
				sb.WriteString("\n")
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString(chat.RenderTranscript(transcript))

	return sb.String(), nil
}

// rememberingStream forwards chunks while collecting them; the exchange
// is stored at most once, on EOF or Close, whichever comes first.
type rememberingStream struct {
	stream generator.Stream
	agent  *Agent
	ctx    context.Context
	input  string
	b      strings.Builder
	stored bool
}

func (s *rememberingStream) Recv() (generator.Chunk, error) {
	chunk, err := s.stream.Recv()
	if errors.Is(err, io.EOF) {
		s.store()
		return chunk, err
	}
	if err != nil {
		return chunk, err
	}

	s.b.WriteString(chunk.Content)

	return chunk, nil
}

func (s *rememberingStream) Close() error {
	s.store()
	return s.stream.Close()
}

func (s *rememberingStream) store() {
	if s.stored {
		return
	}
	s.stored = true

	if len(s.input) == 0 || s.b.Len() == 0 {
		return
	}

	if _, err := s.agent.Remember(s.ctx, s.input, s.b.String()); err != nil {
		slog.WarnContext(s.ctx, "failed to remember exchange", "error", err)
	}
}

func latestUserMessage(transcript []chat.Message) string {
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Role == chat.RoleUser {
			return transcript[i].Content
		}
	}
	return ""
}

func recordResponse(rec memory.Record) string {
	if rec.Metadata == nil {
		return ""
	}
	if s, ok := rec.Metadata["response"].(string); ok {
		return s
	}
	return ""
}

func New(m memory.Memory, g generator.Generator, opts ...Option) *Agent {
	options := NewOptions(opts...)

	return &Agent{
		memory:    m,
		generator: g,
		options:   options,
	}
}
