package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App         App         `mapstructure:",squash"`
	Server      Server      `mapstructure:",squash"`
	Database    Database    `mapstructure:",squash"`
	Gemini      Gemini      `mapstructure:",squash"`
	Inference   Inference   `mapstructure:",squash"`
	Pipeline    Pipeline    `mapstructure:",squash"`
	InsightSync InsightSync `mapstructure:",squash"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Gemini struct {
	APIKey            string        `mapstructure:"gemini_api_key"`
	Model             string        `mapstructure:"gemini_model"`
	VideoModel        string        `mapstructure:"gemini_video_model"`
	MaxVideoBytes     int64         `mapstructure:"gemini_max_video_bytes"`
	FileActiveTimeout time.Duration `mapstructure:"gemini_file_active_timeout"`
}

// Inference controla as tentativas e o limite global de chamadas ao serviço de inferência
type Inference struct {
	MaxAttempts        int           `mapstructure:"inference_max_attempts"`
	BaseDelay          time.Duration `mapstructure:"inference_base_delay"`
	MaxDelay           time.Duration `mapstructure:"inference_max_delay"`
	JitterFactor       float64       `mapstructure:"inference_jitter_factor"`
	CallTimeout        time.Duration `mapstructure:"inference_call_timeout"`
	MaxConcurrentCalls int64         `mapstructure:"inference_max_concurrent_calls"`
}

type Pipeline struct {
	MaxConcurrentUnits int `mapstructure:"pipeline_max_concurrent_units"`
	TopContentLimit    int `mapstructure:"pipeline_top_content_limit"`
	MaxPayloadBytes    int `mapstructure:"pipeline_max_payload_bytes"`
	PriorInsightLimit  int `mapstructure:"pipeline_prior_insight_limit"`
	DefaultWindowDays  int `mapstructure:"pipeline_default_window_days"`
}

type InsightSync struct {
	CronSchedule string   `mapstructure:"insight_sync_cron"`
	LookbackDays int      `mapstructure:"insight_sync_lookback_days"`
	InsightTypes []string `mapstructure:"insight_sync_types"`
	Enabled      bool     `mapstructure:"insight_sync_enabled"`
}

// DefaultCallTimeout limita cada tentativa quando INFERENCE_CALL_TIMEOUT não é válido
const DefaultCallTimeout = 90 * time.Second

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/marketing_analytics?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "postgres")

	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	viper.SetDefault("GEMINI_VIDEO_MODEL", "gemini-1.5-pro")
	viper.SetDefault("GEMINI_MAX_VIDEO_BYTES", 100*1024*1024)
	viper.SetDefault("GEMINI_FILE_ACTIVE_TIMEOUT", "2m")

	viper.SetDefault("INFERENCE_MAX_ATTEMPTS", 3)
	viper.SetDefault("INFERENCE_BASE_DELAY", "1s")
	viper.SetDefault("INFERENCE_MAX_DELAY", "20s")
	viper.SetDefault("INFERENCE_JITTER_FACTOR", 0.2)
	viper.SetDefault("INFERENCE_CALL_TIMEOUT", "90s")
	viper.SetDefault("INFERENCE_MAX_CONCURRENT_CALLS", 2) // limite global, compartilhado entre workers

	viper.SetDefault("PIPELINE_MAX_CONCURRENT_UNITS", 4)
	viper.SetDefault("PIPELINE_TOP_CONTENT_LIMIT", 5)
	viper.SetDefault("PIPELINE_MAX_PAYLOAD_BYTES", 30000)
	viper.SetDefault("PIPELINE_PRIOR_INSIGHT_LIMIT", 6)
	viper.SetDefault("PIPELINE_DEFAULT_WINDOW_DAYS", 30)

	viper.SetDefault("INSIGHT_SYNC_CRON", "0 1 * * *") // Todos os dias à 1h da manhã
	viper.SetDefault("INSIGHT_SYNC_LOOKBACK_DAYS", 30)
	viper.SetDefault("INSIGHT_SYNC_TYPES", "")
	viper.SetDefault("INSIGHT_SYNC_ENABLED", false)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	config.normalize()

	return config, nil
}

// normalize corrige valores que deixariam o pipeline sem trabalhar
func (c *Config) normalize() {
	if c.Inference.MaxAttempts < 1 {
		c.Inference.MaxAttempts = 1
	}
	if c.Inference.CallTimeout <= 0 {
		c.Inference.CallTimeout = DefaultCallTimeout
	}
	if c.Inference.MaxConcurrentCalls < 1 {
		c.Inference.MaxConcurrentCalls = 1
	}
	if c.Pipeline.MaxConcurrentUnits < 1 {
		c.Pipeline.MaxConcurrentUnits = 1
	}
	if c.Pipeline.TopContentLimit < 1 {
		c.Pipeline.TopContentLimit = 5
	}
	if c.Pipeline.DefaultWindowDays < 1 {
		c.Pipeline.DefaultWindowDays = 30
	}
	if c.InsightSync.LookbackDays < 1 {
		c.InsightSync.LookbackDays = c.Pipeline.DefaultWindowDays
	}
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		logrus.Debug("Tentando carregar .env de:", location)
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
