// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"APP_ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	HTTPServer              `yaml:"http_server"`
	GRPCServer              `yaml:"grpc_server"`
	RedisConnection         `yaml:"redis_connection"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	Mail                    `yaml:"mail"`
	Booking                 `yaml:"booking"`
	Scheduler               `yaml:"scheduler"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP    string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":5001"`
	TimeoutHTTP    time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"CLIENT_URL" env-separator:"," env-default:"http://localhost:5500"`
	RateLimit      float64       `yaml:"rate_limit" env-default:"10"`
	RateBurst      int           `yaml:"rate_burst" env-default:"20"`
}

// GRPCServer структура для настройки gRPC health-сервера
type GRPCServer struct {
	AddressGRPC string `yaml:"addressgrpc" env:"GRPC_ADDRESS" env-default:":50051"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"JWT_EXPIRES_IN" env-default:"168h"`
}

// RabbitMQ структура для подключения к брокеру уведомлений
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// Mail структура для настройки отправки писем
type Mail struct {
	MailEnabled bool   `yaml:"enabled" env:"ENABLE_EMAIL" env-default:"false"`
	SMTPHost    string `yaml:"host" env:"MAIL_HOST"`
	SMTPPort    string `yaml:"port" env:"MAIL_PORT" env-default:"587"`
	SMTPUser    string `yaml:"user" env:"MAIL_USER"`
	SMTPPass    string `yaml:"pass" env:"MAIL_PASS"`
	MailFrom    string `yaml:"from" env:"MAIL_FROM" env-default:"Bloom GYM <no-reply@bloomgym.com>"`
}

// Booking структура с настройками записи на занятия
type Booking struct {
	RelaxedAdmission bool          `yaml:"relaxed_admission" env:"BOOKING_RELAXED_ADMISSION" env-default:"false"`
	CacheTTL         time.Duration `yaml:"cache_ttl" env-default:"1h"`
}

// Scheduler структура с настройками планировщика напоминаний
type Scheduler struct {
	Interval time.Duration `yaml:"interval" env:"SCHEDULER_INTERVAL" env-default:"12h"`
}

// MustLoad функция для загрузки конфига, завершает процесс при ошибке
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Load читает .env (если есть), затем YAML из CONFIG_PATH с переопределением из окружения.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cannot read .env: %w", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		return nil, errors.New("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file: %s - does not exist", configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные параметры.
func (c *Config) Validate() error {
	var missing []string
	if c.StorageConnectionString == "" {
		missing = append(missing, "storage_connection_string")
	}
	if c.JWTSecretKey == "" {
		missing = append(missing, "jwttoken.jwt_secret_key")
	}
	if c.MailEnabled {
		if c.SMTPHost == "" {
			missing = append(missing, "mail.host")
		}
		if c.SMTPPort == "" {
			missing = append(missing, "mail.port")
		}
		if c.SMTPUser == "" {
			missing = append(missing, "mail.user")
		}
		if c.SMTPPass == "" {
			missing = append(missing, "mail.pass")
		}
		if c.MailFrom == "" {
			missing = append(missing, "mail.from")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config values: %v", missing)
	}
	return nil
}
