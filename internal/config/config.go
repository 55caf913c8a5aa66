package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPServer struct {
	Addr string `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
}

type Upstream struct {
	BaseURL string        `yaml:"BASE_URL" env:"UPSTREAM_BASE_URL" env-required:"true"`
	Timeout time.Duration `yaml:"TIMEOUT" env:"UPSTREAM_TIMEOUT" env-default:"60s"`
}

type Storage struct {
	Backend string `yaml:"BACKEND" env:"STORAGE_BACKEND" env-default:"file"`
	Path    string `yaml:"PATH" env:"STORAGE_PATH" env-default:"./data"`
}

type RedisConnect struct {
	Host     string `yaml:"REDIS_HOST" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"REDIS_PORT" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"REDIS_USER" env:"REDIS_USER" env-default:""`
	Password string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"REDIS_DB" env:"REDIS_DB" env-default:"0"`
}

type Telemetry struct {
	Enabled      bool   `yaml:"ENABLED" env:"OTEL_ENABLED" env-default:"false"`
	OTLPEndpoint string `yaml:"OTLP_ENDPOINT" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4318"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"ALLOWED_ORIGINS" env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:5173"`
}

type Config struct {
	Env          string `yaml:"env" env:"ENV" env-required:"true"`
	HTTPServer   `yaml:"http_server"`
	Upstream     Upstream     `yaml:"upstream"`
	Storage      Storage      `yaml:"storage"`
	RedisConnect RedisConnect `yaml:"redis"`
	Telemetry    Telemetry    `yaml:"telemetry"`
	CORS         CORS         `yaml:"cors"`
}

func MustLoad() *Config {

	var configPath string

	configPath = os.Getenv("CONFIG_PATH")

	if configPath == "" {

		flags := flag.String("config", "", "gets the config flag value")

		flag.Parse()

		configPath = *flags

		if configPath == "" {

			log.Fatal("Config path is not set")

		}

	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config

	err := cleanenv.ReadConfig(configPath, &cfg)

	if err != nil {

		log.Fatalf("can not read config file: %s", err.Error())
	}

	return &cfg

}

func (r *RedisConnect) GetDSN() string {
	return fmt.Sprintf("redis://%s:%s@%s:%s/%d",
		r.Username, r.Password, r.Host, r.Port, r.DB)
}
