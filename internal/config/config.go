package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type key string

const (
	KeyLogger   = key("logger")
	KeyMetrics  = key("metrics")
	KeyUUID     = key("uuid")
	KeyRole     = key("role")
	KeyToken    = key("token")
	KeyIdentity = key("identity")
)

type Config struct {
	Service    Service
	Platform   Platform
	Postgres   ReadEnvPostgres
	Redis      Redis
	Logger     Logger
	Metrics    Metrics
	Kafka      Kafka
	Centrifuge Centrifuge
	Auth       Auth
}

type Service struct {
	Name string `env:"SERVICE_NAME" env-default:"health-chat-sync"`
	Port string `env:"SERVICE_PORT" env-default:"8080"`
}

type Platform struct {
	Env string `env:"ENV" env-default:"dev"`
}

type ReadEnvPostgres struct {
	User     string `env:"POSTGRES_USER"`
	Password string `env:"POSTGRES_PASSWORD"`
	Database string `env:"POSTGRES_DB"`
	Host     string `env:"POSTGRES_HOST"`
	Port     string `env:"POSTGRES_PORT"`
	// ChangeChannel is the NOTIFY channel the row triggers publish to.
	ChangeChannel string `env:"POSTGRES_CHANGE_CHANNEL" env-default:"record_changes"`
}

func (p ReadEnvPostgres) DSN() string {
	return fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=disable",
		p.User, p.Password, p.Database, p.Host, p.Port)
}

type Redis struct {
	Addr        string        `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password    string        `env:"REDIS_PASSWORD"`
	DB          int           `env:"REDIS_DB" env-default:"0"`
	IdentityTTL time.Duration `env:"REDIS_IDENTITY_TTL" env-default:"720h"`
}

type Logger struct {
	Host string `env:"LOGGER_HOST"`
	Port string `env:"LOGGER_PORT"`
}

type Metrics struct {
	Host string `env:"GRAFANA_HOST"`
	Port int    `env:"GRAFANA_PORT"`
}

type Kafka struct {
	Host         string `env:"KAFKA_HOST"`
	Port         string `env:"KAFKA_PORT"`
	ProfileTopic string `env:"PROFILE_UPDATED_TOPIC" env-default:"profile-updated"`
}

type Centrifuge struct {
	BaseURL   string        `env:"CENTRIFUGO_BASE_URL"`
	APIKey    string        `env:"CENTRIFUGO_API_KEY"`
	JWTSecret string        `env:"CENTRIFUGO_JWT_SECRET"`
	Timeout   time.Duration `env:"CENTRIFUGO_TIMEOUT" env-default:"5s"`
}

type Auth struct {
	JWTSecret  string        `env:"AUTH_JWT_SECRET"`
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" env-default:"720h"`
}

func MustLoad() *Config {
	cfg := &Config{}
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		log.Fatalf("failed to read env variables: %s", err)
	}

	return cfg
}
