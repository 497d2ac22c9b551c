package config

import (
	"sync"
)

type OpenRouterConfig struct {
	APIKey string
	Model  string
}

var (
	openRouterConfig *OpenRouterConfig
	openRouterOnce   sync.Once
)

func LoadOpenRouterConfig() *OpenRouterConfig {
	openRouterOnce.Do(func() {
		v := Env()
		openRouterConfig = &OpenRouterConfig{
			APIKey: v.GetString("OPENROUTER_API_KEY"),
			Model:  v.GetString("OPENROUTER_MODEL"),
		}
	})
	return openRouterConfig
}
