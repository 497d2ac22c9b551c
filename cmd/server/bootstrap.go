package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fadilmartias/cv-screening/internal/config"
	"github.com/fadilmartias/cv-screening/internal/ingest"
	"github.com/fadilmartias/cv-screening/internal/logger"
	"github.com/fadilmartias/cv-screening/internal/model"
	"github.com/fadilmartias/cv-screening/internal/repository"
	"github.com/fadilmartias/cv-screening/internal/service"
	"github.com/fadilmartias/cv-screening/internal/usecase"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newLogger() (*zap.Logger, error) {
	cfg := config.LoadAppConfig()
	return logger.New(cfg.LogJSON, cfg.LogDebug)
}

func connectDB(log *zap.Logger) (*gorm.DB, error) {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	gormConfig := &gorm.Config{}
	if appConfig.IsProduction() {
		gormConfig.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}
	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	log.Info("connected to database", zap.String("host", dbConfig.Host), zap.String("name", dbConfig.Name))
	return db, nil
}

func migrate(db *gorm.DB) error {
	for _, ext := range []string{`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`, `CREATE EXTENSION IF NOT EXISTS vector`} {
		if err := db.Exec(ext).Error; err != nil {
			return fmt.Errorf("create extension: %w", err)
		}
	}
	if err := db.AutoMigrate(&model.Document{}, &model.DocumentChunk{}, &model.EvaluationJob{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// newCompletion picks the text completion provider. Embeddings always use Gemini.
func newCompletion(provider string, gemini *service.GeminiService) (service.TextCompletionService, error) {
	switch provider {
	case "", "gemini":
		return gemini, nil
	case "openrouter":
		or := service.NewOpenRouterService()
		if or.APIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY not set")
		}
		return or, nil
	}
	return nil, fmt.Errorf("unknown LLM_PROVIDER %q", provider)
}

// newDocumentUsecase builds the ingestion path shared by serve, seed and ingest.
func newDocumentUsecase(ctx context.Context, db *gorm.DB, log *zap.Logger) (*usecase.DocumentUsecase, *service.GeminiService, error) {
	gemini, err := service.NewGeminiService(ctx)
	if err != nil {
		return nil, nil, err
	}
	cfg := config.LoadEvaluationConfig()
	documents := usecase.NewDocumentUsecase(
		repository.NewDocumentRepository(db),
		repository.NewChunkRepository(db),
		gemini,
		ingest.NewExtractor(log, true),
		cfg.ChunkSize,
		cfg.ChunkOverlap,
		log,
	)
	return documents, gemini, nil
}
