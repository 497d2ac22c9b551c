package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/fadilmartias/cv-screening/internal/config"
	"google.golang.org/genai"
)

// maxEmbeddingInput bounds the text sent to the embedding model.
const maxEmbeddingInput = 10000

type GeminiService struct {
	Client         *genai.Client
	Model          string
	EmbeddingModel string
}

func NewGeminiService(ctx context.Context) (*GeminiService, error) {
	geminiConfig := config.LoadGeminiConfig()
	apiKey := strings.TrimSpace(geminiConfig.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiService{
		Client:         client,
		Model:          geminiConfig.Model,
		EmbeddingModel: geminiConfig.EmbeddingModel,
	}, nil
}

// Generate performs a single completion call. Retrying is the caller's job.
func (s *GeminiService) Generate(ctx context.Context, prompt string, temperature float32, maxOutputTokens int) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", &StatusError{Code: 400, Message: "prompt cannot be empty"}
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: int32(maxOutputTokens),
	}

	result, err := s.Client.Models.GenerateContent(ctx, s.Model, genai.Text(prompt), genConfig)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return responseText(result)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyCompletion
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(strings.TrimSpace(part.Text))
		}
		// only the first usable candidate counts
		if builder.Len() > 0 {
			break
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", ErrEmptyCompletion
	}
	return output, nil
}

func (s *GeminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	trimmedText := strings.TrimSpace(text)
	if trimmedText == "" {
		return nil, fmt.Errorf("text for embedding cannot be empty")
	}
	if runes := []rune(trimmedText); len(runes) > maxEmbeddingInput {
		trimmedText = string(runes[:maxEmbeddingInput])
	}

	content := []*genai.Content{genai.NewContentFromText(trimmedText, genai.RoleUser)}
	result, err := s.Client.Models.EmbedContent(ctx, s.EmbeddingModel, content, nil)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	return validateEmbeddingResponse(result)
}

func validateEmbeddingResponse(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil {
		return nil, fmt.Errorf("response is nil")
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("no embeddings returned")
	}

	embeddings := resp.Embeddings[0].Values
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding vector is empty")
	}
	for i, val := range embeddings {
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return nil, fmt.Errorf("invalid embedding value at index %d: %v", i, val)
		}
	}
	return embeddings, nil
}
