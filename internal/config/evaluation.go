package config

import (
	"strings"
	"sync"
	"time"
)

// EvaluationConfig tunes the pipeline and scheduler.
type EvaluationConfig struct {
	Provider        string
	MaxConcurrent   int
	CallTimeout     time.Duration
	MaxOutputTokens int
	TopN            int
	ChunkSize       int
	ChunkOverlap    int
}

var (
	evaluationConfig *EvaluationConfig
	evaluationOnce   sync.Once
)

func LoadEvaluationConfig() *EvaluationConfig {
	evaluationOnce.Do(func() {
		v := Env()
		evaluationConfig = &EvaluationConfig{
			Provider:        strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER"))),
			MaxConcurrent:   v.GetInt("EVAL_MAX_CONCURRENT"),
			CallTimeout:     v.GetDuration("EVAL_CALL_TIMEOUT"),
			MaxOutputTokens: v.GetInt("EVAL_MAX_OUTPUT_TOKENS"),
			TopN:            v.GetInt("EVAL_TOP_N"),
			ChunkSize:       v.GetInt("INGEST_CHUNK_SIZE"),
			ChunkOverlap:    v.GetInt("INGEST_CHUNK_OVERLAP"),
		}
	})
	return evaluationConfig
}
