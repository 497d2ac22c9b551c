package config

import (
	"sync"
)

type AppConfig struct {
	Name      string
	Env       string
	Port      string
	BaseURL   string
	UploadDir string
	LogJSON   bool
	LogDebug  bool
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		v := Env()
		appConfig = &AppConfig{
			Name:      v.GetString("APP_NAME"),
			Env:       v.GetString("APP_ENV"),
			Port:      v.GetString("APP_PORT"),
			BaseURL:   v.GetString("APP_URL"),
			UploadDir: v.GetString("UPLOAD_DIR"),
			LogJSON:   v.GetBool("LOG_JSON"),
			LogDebug:  v.GetBool("LOG_DEBUG"),
		}
	})
	return appConfig
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
