// Package model selects a vision model backend from configuration.
package model

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"listscribe"
	"listscribe/model/bedrock"
	"listscribe/model/mock"
	"listscribe/model/ollama"
	"listscribe/tools"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const (
	BackendBedrock = "bedrock"
	BackendOllama  = "ollama"
	BackendMock    = "mock"
)

// NewClient builds the ModelClient named by cfg.Backend. httpClient is only
// used by the ollama backend and may be nil.
func NewClient(ctx context.Context, cfg listscribe.ModelConfig, httpClient listscribe.HTTPClient) (listscribe.ModelClient, error) {
	registry := tools.NewRegistry()

	switch cfg.Backend {
	case "", BackendBedrock:
		brc, err := NewBedrockRuntimeClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("bedrock client: %w", err)
		}
		llm := bedrock.NewLLMClient(brc, bedrock.LLMOptions{
			ModelID:     cfg.ModelID,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
		})
		slog.Info("SETUP: Using Bedrock backend", "model_id", cfg.ModelID)
		return bedrock.NewAdapter(llm, registry), nil

	case BackendOllama:
		if httpClient == nil {
			httpClient = http.DefaultClient
		}
		llm, err := ollama.NewClient(ollama.ClientOpts{
			BaseEndpoint: cfg.OllamaEndpoint,
			ModelID:      cfg.ModelID,
			MaxTokens:    int(cfg.MaxTokens),
			Temperature:  float64(cfg.Temperature),
			TopP:         float64(cfg.TopP),
			HTTPClient:   httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("ollama client: %w", err)
		}
		slog.Info("SETUP: Using Ollama backend", "endpoint", cfg.OllamaEndpoint, "model_id", cfg.ModelID)
		return ollama.NewAdapter(llm, registry), nil

	case BackendMock:
		slog.Info("SETUP: Using mock backend")
		return mock.NewClient("", registry), nil

	default:
		return nil, fmt.Errorf("unknown model backend %q", cfg.Backend)
	}
}

func NewBedrockRuntimeClient(ctx context.Context) (*bedrockruntime.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
	if err != nil {
		return nil, err
	}
	return bedrockruntime.NewFromConfig(awsCfg), nil
}
