package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	agent "github.com/wyh7/MLE-agent"
	"github.com/wyh7/MLE-agent/chat"
	"github.com/wyh7/MLE-agent/config"
	"github.com/wyh7/MLE-agent/generator"
	anthropicgenerator "github.com/wyh7/MLE-agent/generator/anthropic"
	googlegenerator "github.com/wyh7/MLE-agent/generator/google"
	openaigenerator "github.com/wyh7/MLE-agent/generator/openai"
	"github.com/wyh7/MLE-agent/memory"
	chromemmemory "github.com/wyh7/MLE-agent/memory/chromem"
	"github.com/wyh7/MLE-agent/memory/embedder"
	googleembedder "github.com/wyh7/MLE-agent/memory/embedder/google"
	mockembedder "github.com/wyh7/MLE-agent/memory/embedder/mock"
	openaiembedder "github.com/wyh7/MLE-agent/memory/embedder/openai"
	inmemorymemory "github.com/wyh7/MLE-agent/memory/inmemory"
	postgresmemory "github.com/wyh7/MLE-agent/memory/postgres"
	qdrantmemory "github.com/wyh7/MLE-agent/memory/qdrant"
)

var cfg struct {
	// Config
	Config      string `help:"Path to the JSON credential file" default:"config.json"`
	ProjectPath string `help:"Project directory; embedded backends store data in its .mle subdirectory" default:"."`

	// Memory config
	Backend    string `help:"Memory backend: chromem, qdrant, postgres, or inmemory" default:"chromem"`
	Location   string `help:"Address of a remote memory backend (qdrant URL or postgres DSN)" default:""`
	Collection string `help:"Default collection name" default:"memory"`
	VectorSize int    `help:"Embedding dimensionality for backends that need it up front" default:"1536"`
	Recall     int    `help:"Number of remembered exchanges to prepend per prompt" default:"5"`
	AllowReset bool   `help:"Permit Reset on backends that gate it" default:"false"`

	// Generator config
	Model        string `help:"Model identifier for the generator" default:"gpt-3.5-turbo"`
	SystemPrompt string `help:"System prompt for the agent" default:""`
}

func main() {
	_ = godotenv.Load()
	_ = kong.Parse(&cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c, err := config.Load(cfg.Config)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	mem := newMemory(c)

	gen := newGenerator(c)

	a := agent.New(
		mem,
		gen,
		agent.WithRecallLimit(cfg.Recall),
		agent.WithSystemPrompt(cfg.SystemPrompt),
	)

	opts := []chat.Option{}

	if home, err := config.Home(); err == nil {
		opts = append(opts, chat.WithHistory(chat.NewHistory(filepath.Join(home, "history"))))
	}

	if err := chat.New(a, opts...).Start(ctx); err != nil {
		log.Fatalf("chat failed: %v", err)
	}
}

func newMemory(c *config.Config) memory.Memory {
	opts := []memory.Option{
		memory.WithCollection(cfg.Collection),
		memory.WithVectorSize(cfg.VectorSize),
		memory.WithAllowReset(cfg.AllowReset),
	}

	e := newEmbedder(c)

	switch cfg.Backend {
	case "qdrant":
		return qdrantmemory.NewMemory(append(opts,
			memory.WithLocation(cfg.Location),
			memory.WithEmbedder(e),
		)...)
	case "postgres":
		return postgresmemory.NewMemory(append(opts,
			memory.WithLocation(cfg.Location),
			memory.WithEmbedder(e),
		)...)
	case "inmemory":
		if e == nil {
			e = mockembedder.NewEmbedder(cfg.VectorSize)
		}
		return inmemorymemory.NewMemory(append(opts, memory.WithEmbedder(e))...)
	default:
		// chromem falls back to its own hosted default when the
		// platform provides no embedder
		return chromemmemory.NewMemory(append(opts,
			memory.WithLocation(cfg.ProjectPath),
			memory.WithEmbedder(e),
		)...)
	}
}

func newEmbedder(c *config.Config) embedder.Embedder {
	switch c.Platform {
	case config.PlatformOpenAI:
		return openaiembedder.NewEmbedder(
			embedder.WithApiKey(c.ApiKey),
			embedder.WithModel(c.EmbeddingModel),
		)
	case config.PlatformGoogle:
		return googleembedder.NewEmbedder(
			embedder.WithApiKey(c.ApiKey),
			embedder.WithModel(c.EmbeddingModel),
		)
	default:
		return nil
	}
}

func newGenerator(c *config.Config) generator.Generator {
	model := c.Model
	if len(model) == 0 {
		model = cfg.Model
	}

	opts := []generator.Option{
		generator.WithApiKey(c.ApiKey),
		generator.WithModel(model),
	}

	switch c.Platform {
	case config.PlatformAnthropic:
		return anthropicgenerator.NewGenerator(opts...)
	case config.PlatformGoogle:
		return googlegenerator.NewGenerator(opts...)
	default:
		return openaigenerator.NewGenerator(opts...)
	}
}
