package config

import (
	"log"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервиса.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	TZ          string `envconfig:"TZ" default:"Europe/Amsterdam"`
	Port        int    `envconfig:"PORT" default:"8081"`
	MetricsPort int    `envconfig:"METRICS_PORT" default:"9090"`

	DataDir string `envconfig:"DATA_DIR" default:"data"`

	Telegram struct {
		Token      string `envconfig:"TG_BOT_TOKEN"`
		WebhookURL string `envconfig:"TG_WEBHOOK_URL"`
	} `envconfig:""`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	RabbitURL           string `envconfig:"RABBITMQ_URL"`
	RabbitManagementURL string `envconfig:"RABBITMQ_MANAGEMENT_URL"`

	Queues struct {
		Reports string `envconfig:"REPORT_QUEUE_KEY" default:"report_jobs"`
	} `envconfig:""`

	Reports struct {
		Hour       int    `envconfig:"REPORT_HOUR" default:"9"`
		Period     string `envconfig:"REPORT_PERIOD" default:"daily"`
		Retention  string `envconfig:"REPORTS_RETENTION" default:"retain"`
		LengthBins int    `envconfig:"CHART_LENGTH_BINS" default:"30"`
		ChartFont  string `envconfig:"CHART_FONT"`
	} `envconfig:""`

	Monitoring struct {
		Keywords []string `envconfig:"MONITOR_KEYWORDS"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
