package service

import (
	"context"
	"strings"

	"github.com/fadilmartias/cv-screening/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

type OpenRouterService struct {
	APIKey  string
	Model   string
	BaseURL string
	client  *resty.Client
}

func NewOpenRouterService() *OpenRouterService {
	cfg := config.LoadOpenRouterConfig()
	return &OpenRouterService{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: openRouterURL,
		client:  resty.New(),
	}
}

func (s *OpenRouterService) Generate(ctx context.Context, prompt string, temperature float32, maxOutputTokens int) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"model":       s.Model,
			"temperature": temperature,
			"max_tokens":  maxOutputTokens,
			"messages": []map[string]string{
				{"role": "system", "content": "You are an AI evaluating job applications."},
				{"role": "user", "content": prompt},
			},
		}).
		Post(s.BaseURL)
	if err != nil {
		return "", err
	}

	body := resp.String()
	if resp.IsError() {
		msg := gjson.Get(body, "error.message").String()
		if msg == "" {
			msg = resp.Status()
		}
		return "", &StatusError{Code: resp.StatusCode(), Message: msg}
	}

	text := strings.TrimSpace(gjson.Get(body, "choices.0.message.content").String())
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
