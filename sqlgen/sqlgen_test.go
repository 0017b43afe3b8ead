package sqlgen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyh7/MLE-agent/generator"
)

type fakeGenerator struct {
	reply  string
	err    error
	prompt string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.reply, g.err
}

func (g *fakeGenerator) Stream(ctx context.Context, prompt string) (generator.Stream, error) {
	return nil, errors.New("not streamed")
}

func TestRun_RendersTemplateAndParses(t *testing.T) {
	g := &fakeGenerator{reply: "SELECT * FROM IMDB_TEST LIMIT 5;"}

	chain := New(g)

	query, err := chain.Run(context.Background(), "show me top 5 records")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM IMDB_TEST LIMIT 5", query)

	assert.Contains(t, g.prompt, "show me top 5 records")
	assert.Contains(t, g.prompt, "Do not add ; at the end of the query")
}

func TestRun_CustomTemplate(t *testing.T) {
	g := &fakeGenerator{reply: "SELECT 1"}

	chain := New(g, WithTemplate("translate to sql: %s"))

	_, err := chain.Run(context.Background(), "count users")
	require.NoError(t, err)
	assert.Equal(t, "translate to sql: count users", g.prompt)
}

func TestRun_GeneratorError(t *testing.T) {
	g := &fakeGenerator{err: errors.New("rate limited")}

	chain := New(g)

	_, err := chain.Run(context.Background(), "anything")
	assert.Error(t, err)
}

func TestParseSQL(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"bare", "SELECT 1", "SELECT 1"},
		{"whitespace", "  SELECT 1  \n", "SELECT 1"},
		{"semicolon", "SELECT 1;", "SELECT 1"},
		{"fenced", "```\nSELECT 1\n```", "SELECT 1"},
		{"fenced with tag", "```sql\nSELECT 1;\n```", "SELECT 1"},
		{"fenced with upper tag", "```SQL\nSELECT 1\n```", "SELECT 1"},
		{"prose after fence", "```sql\nSELECT 1\n``` some explanation", "SELECT 1"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, ParseSQL(test.raw))
		})
	}
}
