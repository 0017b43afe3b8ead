package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/wyh7/MLE-agent/config"
	memoryservice "github.com/wyh7/MLE-agent/internal/service/memory"
	"github.com/wyh7/MLE-agent/memory"
	chromemmemory "github.com/wyh7/MLE-agent/memory/chromem"
	"github.com/wyh7/MLE-agent/memory/embedder"
	googleembedder "github.com/wyh7/MLE-agent/memory/embedder/google"
	mockembedder "github.com/wyh7/MLE-agent/memory/embedder/mock"
	openaiembedder "github.com/wyh7/MLE-agent/memory/embedder/openai"
	inmemorymemory "github.com/wyh7/MLE-agent/memory/inmemory"
	postgresmemory "github.com/wyh7/MLE-agent/memory/postgres"
	qdrantmemory "github.com/wyh7/MLE-agent/memory/qdrant"
	"github.com/wyh7/MLE-agent/server"
	httpserver "github.com/wyh7/MLE-agent/server/http"
)

var cfg struct {
	Config      string `help:"Path to the JSON credential file" default:"config.json"`
	Address     string `help:"Listen address" default:":4000"`
	ProjectPath string `help:"Project directory; embedded backends store data in its .mle subdirectory" default:"."`
	Backend     string `help:"Memory backend: chromem, qdrant, postgres, or inmemory" default:"chromem"`
	Location    string `help:"Address of a remote memory backend (qdrant URL or postgres DSN)" default:""`
	Collection  string `help:"Default collection name" default:"memory"`
	VectorSize  int    `help:"Embedding dimensionality for backends that need it up front" default:"1536"`
	AllowReset  bool   `help:"Permit Reset on backends that gate it" default:"false"`
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

	srv := httpserver.NewServer(
		memoryservice.New(newMemory(c)),
		server.WithAddress(cfg.Address),
	)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		srv.Stop(shutdownCtx)
	}()

	if err := srv.Run(); err != nil {
		log.Printf("memory server stopped: %v", err)
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
