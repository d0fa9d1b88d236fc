package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"haml_conversation_publisher/config"
	"haml_conversation_publisher/generator"
	"haml_conversation_publisher/publisher"
	"haml_conversation_publisher/server"
	"haml_conversation_publisher/summarizer"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config/config.json", "path to config.json")
	hamlPath := flag.String("haml", "", "path to HAML file (CLI mode)")
	enrich := flag.Bool("enrich", false, "summarize referenced urls before generation")
	out := flag.String("out", "", "write generated HTML to this file instead of stdout")
	keyword := flag.String("keyword", "", "publish the generated page under this keyword")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	mock := flag.Bool("mock", false, "use a canned in-process model instead of the API")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = logger.Sync() }()

	llm, err := buildLLM(cfg, *mock)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fetcher := summarizer.NewFetcher(summarizer.FetchOptions{
		Timeout:      time.Duration(cfg.Summary.FetchTimeoutSeconds) * time.Second,
		MaxBodyBytes: cfg.Summary.MaxBodyBytes,
		Concurrency:  cfg.Summary.Concurrency,
	}, logger)
	sum := summarizer.New(llm, fetcher, logger)

	agent, err := generator.NewAgent(llm, sum, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	pub := publisher.New(cfg.PublicDir, logger)

	// Web server mode
	if *serve {
		srv, err := server.New(agent, sum, pub, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		logger.Info("starting web server", zap.String("addr", listen))
		if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *hamlPath == "" {
		fmt.Fprintln(os.Stderr, "--haml is required unless --serve is set")
		os.Exit(1)
	}
	raw, err := os.ReadFile(*hamlPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	var html string
	if *enrich {
		html, err = agent.GenerateEnriched(ctx, string(raw))
	} else {
		html, err = agent.Generate(ctx, string(raw))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *out != "" {
		if err := os.WriteFile(*out, []byte(html), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	} else {
		fmt.Println(html)
	}

	if *keyword != "" {
		url, err := pub.Publish(*keyword, html)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		logger.Info("published", zap.String("url", url))
	}
}

func buildLLM(cfg config.Config, mock bool) (generator.LLMClient, error) {
	if mock {
		return &generator.MockLLM{}, nil
	}
	switch cfg.LLM.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(&generator.LLMSettings{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
		})
	case "deepseek":
		// DeepSeek speaks the OpenAI wire protocol; base_url selects the endpoint.
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(&generator.LLMSettings{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
		})
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}

func newLogger(levelStr, format string) *zap.Logger {
	level := zapcore.InfoLevel
	switch levelStr {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, _ := cfg.Build()
	return logger
}
