package sqlgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/wyh7/MLE-agent/generator"
)

// defaultTemplate is the one-shot prompt the chain renders around the
// user's request. The model is told to omit the trailing semicolon so
// the output can be embedded verbatim.
const defaultTemplate = `You play as a professional data scientist. You are currently in the Data Engineering stage. You will understand the user's input and generate a SQL query for the warehouse. Do not add ; at the end of the query.

The user's input description is: %s
The SQL query generated is:`

// Chain is a linear pipeline: render the prompt template, run the
// generator once, parse the output down to a bare SQL string.
type Chain struct {
	generator generator.Generator
	options   Options
}

func (c *Chain) Run(ctx context.Context, input string) (string, error) {
	prompt := fmt.Sprintf(c.options.Template, input)

	raw, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	return ParseSQL(raw), nil
}

// ParseSQL strips the wrapping a model tends to add around a query:
// markdown fences, an optional language tag, surrounding whitespace,
// and a trailing semicolon.
func ParseSQL(raw string) string {
	query := strings.TrimSpace(raw)

	if strings.HasPrefix(query, "```") {
		query = strings.TrimPrefix(query, "```")
		if idx := strings.Index(query, "```"); idx >= 0 {
			query = query[:idx]
		}
		query = strings.TrimSpace(query)
		query = strings.TrimPrefix(query, "sql")
		query = strings.TrimPrefix(query, "SQL")
	}

	query = strings.TrimSpace(query)
	query = strings.TrimSuffix(query, ";")

	return strings.TrimSpace(query)
}

func New(g generator.Generator, opts ...Option) *Chain {
	options := NewOptions(opts...)

	return &Chain{
		generator: g,
		options:   options,
	}
}
