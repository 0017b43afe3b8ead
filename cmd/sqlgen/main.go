package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/wyh7/MLE-agent/config"
	"github.com/wyh7/MLE-agent/generator"
	openaigenerator "github.com/wyh7/MLE-agent/generator/openai"
	"github.com/wyh7/MLE-agent/sqlgen"
	"github.com/wyh7/MLE-agent/warehouse"
)

var cfg struct {
	Config string `help:"Path to the JSON credential file" default:"credential.json"`
	Prompt string `help:"Natural-language request to turn into SQL" default:"Show me top 5 records from IMDB_TEST"`
	Model  string `help:"Model identifier for the generator" default:"gpt-3.5-turbo"`
}

var dataStores = map[string]string{
	"1": "Snowflake",
	"2": "Databricks",
	"3": "AWS S3",
}

func main() {
	_ = godotenv.Load()
	_ = kong.Parse(&cfg)

	ctx := context.Background()

	chooseDataStore()

	c, err := config.Load(cfg.Config)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	session, err := warehouse.NewSession(
		warehouse.WithLocation(c.Warehouse.DSN),
	)
	if err != nil {
		log.Fatalf("failed to open warehouse session: %v", err)
	}
	defer session.Close()

	llm := openaigenerator.NewGenerator(
		generator.WithApiKey(c.ApiKey),
		generator.WithModel(cfg.Model),
	)

	chain := sqlgen.New(llm)

	query, err := chain.Run(ctx, cfg.Prompt)
	if err != nil {
		log.Fatalf("failed to generate SQL: %v", err)
	}

	// show what the model produced before running it
	fmt.Println(query)

	if err := session.Show(ctx, os.Stdout, query); err != nil {
		log.Fatalf("failed to execute SQL: %v", err)
	}
}

func chooseDataStore() {
	fmt.Println("Welcome to the MLE-agent!")
	fmt.Println("You are currently in the Data Engineering stage.")
	fmt.Println("Please choose a data store by entering the corresponding number:")
	fmt.Println("1. Snowflake")
	fmt.Println("2. Databricks")
	fmt.Println("3. AWS S3")

	fmt.Print("Enter your choice (1, 2, or 3): ")

	reader := bufio.NewReader(os.Stdin)
	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(choice)

	if store, ok := dataStores[choice]; ok {
		fmt.Printf("MLE-agent will now help you to load data from %s.\n", store)
	} else {
		fmt.Println("Invalid choice. Please run the program again and select 1, 2, or 3.")
	}
}
