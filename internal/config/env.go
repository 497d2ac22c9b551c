package config

import (
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	env     *viper.Viper
	envOnce sync.Once
)

// Env returns the process-wide viper instance reading from environment
// variables. godotenv must have populated the environment before the first call.
func Env() *viper.Viper {
	envOnce.Do(func() {
		env = viper.New()
		env.AutomaticEnv()

		env.SetDefault("APP_NAME", "cv-screening")
		env.SetDefault("APP_ENV", "development")
		env.SetDefault("APP_PORT", ":8080")
		env.SetDefault("UPLOAD_DIR", "./uploads")
		env.SetDefault("DB_PORT", "5432")
		env.SetDefault("DB_SSLMODE", "disable")
		env.SetDefault("LLM_PROVIDER", "gemini")
		env.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
		env.SetDefault("GEMINI_EMBEDDING_MODEL", "gemini-embedding-001")
		env.SetDefault("OPENROUTER_MODEL", "openai/gpt-4o-mini")
		env.SetDefault("EVAL_MAX_CONCURRENT", 3)
		env.SetDefault("EVAL_CALL_TIMEOUT", 30*time.Second)
		env.SetDefault("EVAL_MAX_OUTPUT_TOKENS", 2048)
		env.SetDefault("EVAL_TOP_N", 5)
		env.SetDefault("LOG_JSON", false)
		env.SetDefault("LOG_DEBUG", false)
		env.SetDefault("INGEST_CHUNK_SIZE", 1000)
		env.SetDefault("INGEST_CHUNK_OVERLAP", 200)
	})
	return env
}
