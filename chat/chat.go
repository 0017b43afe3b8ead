package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/wyh7/MLE-agent/generator"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// cursor trails the streamed text and is erased at stream end.
	cursor = "█"
)

type Message struct {
	Role    string
	Content string
}

// Completer turns the running transcript into a streamed reply. The
// memory-augmented agent satisfies it, as does any bare generator via
// NewCompleter.
type Completer interface {
	Stream(ctx context.Context, transcript []Message) (generator.Stream, error)
}

// Chat is a blocking read-eval loop: read one line, stream the reply
// token-by-token, append both turns to the transcript, repeat until
// interrupt or EOF.
type Chat struct {
	completer  Completer
	transcript []Message
	options    Options
}

func (c *Chat) Start(ctx context.Context) error {
	in := bufio.NewReader(c.options.Input)

	type read struct {
		line string
		err  error
	}

	// reads happen off the loop so an interrupt is not stuck behind a
	// blocked terminal read
	reads := make(chan read)
	go func() {
		for {
			line, err := in.ReadString('\n')
			reads <- read{line: line, err: err}
			if err != nil {
				return
			}
		}
	}()

	for {
		fmt.Fprint(c.options.Output, "(Type to ask): ")

		var line string

		select {
		case <-ctx.Done():
			fmt.Fprintln(c.options.Output)
			return nil
		case r := <-reads:
			if r.err != nil {
				if errors.Is(r.err, io.EOF) {
					return nil
				}
				return r.err
			}
			line = strings.TrimSpace(r.line)
		}

		if len(line) == 0 {
			continue
		}

		if c.options.History != nil {
			if err := c.options.History.Append(line); err != nil {
				slog.WarnContext(ctx, "failed to append chat history", "error", err)
			}
		}

		c.HandleStreaming(ctx, line)
	}
}

// HandleStreaming streams one reply for the prompt, rendering chunks as
// they arrive. The assistant turn appended to the transcript is exactly
// the concatenation of the streamed chunks. Generator failures are
// printed at this single call site and the loop goes on.
func (c *Chat) HandleStreaming(ctx context.Context, prompt string) {
	c.transcript = append(c.transcript, Message{Role: RoleUser, Content: prompt})

	fmt.Fprint(c.options.Output, "> ", cursor)

	var b strings.Builder

	stream, err := c.completer.Stream(ctx, c.transcript)
	if err != nil {
		fmt.Fprintf(c.options.Output, "\b \bGeneratorError: %v\n", err)
		c.transcript = append(c.transcript, Message{Role: RoleAssistant, Content: b.String()})
		return
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			fmt.Fprint(c.options.Output, "\b \b\n")
			break
		}
		if err != nil {
			fmt.Fprintf(c.options.Output, "\b \b\nGeneratorError: %v\n", err)
			break
		}

		if len(chunk.Content) > 0 {
			b.WriteString(chunk.Content)
			// back over the cursor, write the chunk, redraw it
			fmt.Fprint(c.options.Output, "\b", chunk.Content, cursor)
		}
	}

	c.transcript = append(c.transcript, Message{Role: RoleAssistant, Content: b.String()})
}

func (c *Chat) Transcript() []Message {
	return c.transcript
}

func New(completer Completer, opts ...Option) *Chat {
	options := NewOptions(opts...)

	return &Chat{
		completer: completer,
		options:   options,
	}
}

// RenderTranscript flattens a transcript into a single prompt, one turn
// per line, ready for a prompt-in/string-out generator.
func RenderTranscript(transcript []Message) string {
	var sb strings.Builder
	for _, msg := range transcript {
		sb.WriteString(msg.Role)
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}
	sb.WriteString(RoleAssistant)
	sb.WriteString(":")
	return sb.String()
}

type generatorCompleter struct {
	generator generator.Generator
}

func (c *generatorCompleter) Stream(ctx context.Context, transcript []Message) (generator.Stream, error) {
	return c.generator.Stream(ctx, RenderTranscript(transcript))
}

func NewCompleter(g generator.Generator) Completer {
	return &generatorCompleter{generator: g}
}
