package config

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Env           string `mapstructure:"env"`
		Port          string `mapstructure:"port"`
		LogLevel      string `mapstructure:"log_level"`
		PublicBaseURL string `mapstructure:"public_base_url"`
	} `mapstructure:"app"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Kafka struct {
		Enabled bool     `mapstructure:"enabled"`
		Brokers []string `mapstructure:"brokers"`
		GroupID string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret     string        `mapstructure:"jwt_secret"`
		TokenLifespan time.Duration `mapstructure:"token_lifespan"`
	} `mapstructure:"auth"`
	Storage struct {
		Provider string `mapstructure:"provider"`
	} `mapstructure:"storage"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	S3 struct {
		Bucket    string `mapstructure:"bucket"`
		Region    string `mapstructure:"region"`
		Endpoint  string `mapstructure:"endpoint"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		BaseURL   string `mapstructure:"base_url"`
	} `mapstructure:"s3"`
	Tracing struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
		ServiceName  string `mapstructure:"service_name"`
	} `mapstructure:"tracing"`
	Analytics struct {
		IngestMode       string  `mapstructure:"ingest_mode"`
		DefaultRangeDays int     `mapstructure:"default_range_days"`
		MaxRangeDays     int     `mapstructure:"max_range_days"`
		TrackRPS         float64 `mapstructure:"track_rps"`
		TrackBurst       int     `mapstructure:"track_burst"`
	} `mapstructure:"analytics"`
	Content struct {
		TimelineOrder string `mapstructure:"timeline_order"`
	} `mapstructure:"content"`
	Editor struct {
		SessionTTL time.Duration `mapstructure:"session_ttl"`
	} `mapstructure:"editor"`
}

var envBindings = map[string]string{
	"app.env":                      "APP_ENV",
	"app.port":                     "APP_PORT",
	"app.log_level":                "LOG_LEVEL",
	"app.public_base_url":          "PUBLIC_BASE_URL",
	"db.dsn":                       "DB_DSN",
	"redis.addr":                   "REDIS_ADDR",
	"redis.password":               "REDIS_PASSWORD",
	"redis.db":                     "REDIS_DB",
	"kafka.enabled":                "KAFKA_ENABLED",
	"kafka.brokers":                "KAFKA_BROKERS",
	"kafka.group_id":               "KAFKA_GROUP_ID",
	"auth.jwt_secret":              "JWT_SECRET",
	"auth.token_lifespan":          "TOKEN_LIFESPAN",
	"storage.provider":             "STORAGE_PROVIDER",
	"cloudinary.cloud_name":        "CLOUDINARY_CLOUD_NAME",
	"cloudinary.api_key":           "CLOUDINARY_API_KEY",
	"cloudinary.api_secret":        "CLOUDINARY_API_SECRET",
	"s3.bucket":                    "S3_BUCKET",
	"s3.region":                    "S3_REGION",
	"s3.endpoint":                  "S3_ENDPOINT",
	"s3.access_key":                "S3_ACCESS_KEY",
	"s3.secret_key":                "S3_SECRET_KEY",
	"s3.base_url":                  "S3_BASE_URL",
	"tracing.otlp_endpoint":        "OTLP_ENDPOINT",
	"tracing.service_name":         "OTEL_SERVICE_NAME",
	"analytics.ingest_mode":        "ANALYTICS_INGEST_MODE",
	"analytics.default_range_days": "ANALYTICS_DEFAULT_RANGE_DAYS",
	"analytics.max_range_days":     "ANALYTICS_MAX_RANGE_DAYS",
	"analytics.track_rps":          "ANALYTICS_TRACK_RPS",
	"analytics.track_burst":        "ANALYTICS_TRACK_BURST",
	"content.timeline_order":       "TIMELINE_ORDER",
	"editor.session_ttl":           "EDITOR_SESSION_TTL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.public_base_url", "http://localhost:8080")
	v.SetDefault("kafka.group_id", "projectshelf-worker")
	v.SetDefault("auth.token_lifespan", 24*time.Hour)
	v.SetDefault("storage.provider", "cloudinary")
	v.SetDefault("tracing.service_name", "projectshelf")
	v.SetDefault("analytics.ingest_mode", "direct")
	v.SetDefault("analytics.default_range_days", 30)
	v.SetDefault("analytics.max_range_days", 366)
	v.SetDefault("analytics.track_rps", 5)
	v.SetDefault("analytics.track_burst", 20)
	v.SetDefault("content.timeline_order", "date")
	v.SetDefault("editor.session_ttl", 2*time.Hour)
}

// LoadConfig reads .env and config.yaml from the given directories (the working directory when none)
// and overlays environment variables.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	if err := godotenv.Load(filepath.Join(paths[0], ".env")); err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	v := viper.New()
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read env only. Error: %v", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	for key, env := range envBindings {
		if err = v.BindEnv(key, env); err != nil {
			return cfg, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if err = v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Analytics.IngestMode {
	case "direct", "kafka":
	default:
		return fmt.Errorf("analytics.ingest_mode must be direct or kafka, got %q", c.Analytics.IngestMode)
	}
	switch c.Storage.Provider {
	case "cloudinary", "s3":
	default:
		return fmt.Errorf("storage.provider must be cloudinary or s3, got %q", c.Storage.Provider)
	}
	if c.Analytics.MaxRangeDays < c.Analytics.DefaultRangeDays {
		return fmt.Errorf("analytics.max_range_days must be at least analytics.default_range_days")
	}
	if c.Analytics.IngestMode == "kafka" && (!c.Kafka.Enabled || len(c.Kafka.Brokers) == 0) {
		return fmt.Errorf("analytics.ingest_mode=kafka requires kafka.enabled and kafka.brokers")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}
