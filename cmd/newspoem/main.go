package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"vestacal/internal/config"
	appLog "vestacal/internal/log"
	"vestacal/internal/news"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config file (defaults used when empty)")
		output     = flag.String("output", ".", "Output folder for the poem file")
	)
	flag.Parse()

	_ = godotenv.Load()

	conf := config.DefaultConfig()
	if *configPath != "" {
		var err error
		conf, err = config.Load(*configPath)
		if err != nil {
			appLog.Error("failed to load config", err, "config_path", *configPath)
			os.Exit(1)
		}
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	poet := news.NewPoet(os.Getenv("OPENAI_API_KEY"), conf.OpenAIModel)
	if poet == nil {
		appLog.Error("OPENAI_API_KEY is not set", nil)
		os.Exit(1)
	}

	ctx := context.Background()

	fetcher := news.NewFetcher()
	articles, err := fetcher.Headlines(ctx, conf.FeedURL)
	if err != nil {
		appLog.Error("failed to fetch feed", err, "url", conf.FeedURL)
		os.Exit(1)
	}
	if len(articles) == 0 {
		fmt.Println("No interesting article found.")
		os.Exit(1)
	}

	headlines := make([]string, 0, len(articles))
	for _, a := range articles {
		headlines = append(headlines, a.Title)
	}

	poem, err := poet.Generate(ctx, headlines)
	if err != nil {
		appLog.Error("failed to generate poem", err)
		os.Exit(1)
	}
	fmt.Println(poem)

	path, err := news.WritePoemFile(*output, poem, time.Now())
	if err != nil {
		appLog.Error("failed to write poem", err, "output", *output)
		os.Exit(1)
	}
	fmt.Printf("Poem written to %s\n", path)
}
