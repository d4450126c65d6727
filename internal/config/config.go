// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/magabrotheeeer/zentask/internal/models"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	GRPCAuthAddress         string `yaml:"grpc_auth_address" env:"GRPC_AUTH_ADDRESS" env-default:"localhost:50051"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Security                `yaml:"security"`
	Tasks                   `yaml:"tasks"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env:"HTTP_TIMEOUT" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env:"REDIS_TIMEOUT" env-default:"3s"`
}

// RabbitMQ структура для настройки публикации событий аудита.
// Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL          string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange     string        `yaml:"exchange" env:"RABBITMQ_EXCHANGE" env-default:"tasks"`
	Retries      int           `yaml:"retries" env:"RABBITMQ_RETRIES" env-default:"5"`
	RetryDelay   time.Duration `yaml:"retry_delay" env:"RABBITMQ_RETRY_DELAY" env-default:"2s"`
	AuditWorkers int           `yaml:"audit_workers" env:"RABBITMQ_AUDIT_WORKERS" env-default:"4"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"24h"`
}

// Security структура с параметрами хэширования паролей и ограничения запросов
type Security struct {
	BcryptCost    int     `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
	AuthRateLimit float64 `yaml:"auth_rate_limit" env:"AUTH_RATE_LIMIT" env-default:"5"`
	AuthRateBurst int     `yaml:"auth_rate_burst" env:"AUTH_RATE_BURST" env-default:"10"`
}

// Tasks структура с настройками задач
type Tasks struct {
	Statuses []string      `yaml:"statuses" env:"TASK_STATUSES" env-separator:"," env-default:"TODO,IN_PROGRESS,DONE"`
	CacheTTL time.Duration `yaml:"cache_ttl" env:"TASK_CACHE_TTL" env-default:"10m"`
}

// AllowedStatuses возвращает набор статусов задач из конфига в верхнем регистре.
// Пустые значения и повторы отбрасываются.
func (t Tasks) AllowedStatuses() []models.Status {
	res := make([]models.Status, 0, len(t.Statuses))
	for _, s := range t.Statuses {
		st := models.Status(strings.ToUpper(strings.TrimSpace(s)))
		if st == "" || slices.Contains(res, st) {
			continue
		}
		res = append(res, st)
	}
	if len(res) == 0 {
		return models.DefaultStatuses()
	}
	return res
}

// MustLoad функция для загрузки конфига из файла CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг из файла path, переменные окружения имеют приоритет.
func Load(path string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, path)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"GRPCAuthAddress: %s\n"+
			"StorageConnectionString: %s\n"+
			"MigrationsPath: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  Password: %s\n"+
			"  DB: %d\n"+
			"RabbitMQ:\n"+
			"  URL: %s\n"+
			"  Exchange: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  JWTSecretKey: %s\n"+
			"  TokenTTL: %s\n"+
			"Tasks:\n"+
			"  Statuses: %v\n"+
			"  CacheTTL: %s\n",
		c.Env,
		c.GRPCAuthAddress,
		redact(c.StorageConnectionString),
		c.MigrationsPath,
		c.AddressRedis,
		redact(c.RedisConnection.Password),
		c.DB,
		redact(c.RabbitMQ.URL),
		c.Exchange,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		redact(c.JWTSecretKey),
		c.TokenTTL,
		c.Statuses,
		c.CacheTTL,
	)
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
