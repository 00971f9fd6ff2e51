package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string    `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis     `yaml:"redis"`
	Room       Room      `yaml:"room"`
	RateLimit  RateLimit `yaml:"rate-limit"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Room holds the knobs of room coordination.
type Room struct {
	// GracePeriod is how long a backgrounded player keeps their seat.
	GracePeriod time.Duration `yaml:"grace-period" env:"ROOM_GRACE_PERIOD" env-default:"5m"`
	// ResultTTL is how long the outcome of a deleted room stays readable.
	ResultTTL    time.Duration `yaml:"result-ttl" env:"ROOM_RESULT_TTL" env-default:"10m"`
	MaxTxRetries int           `yaml:"max-tx-retries" env:"ROOM_MAX_TX_RETRIES" env-default:"8"`
}

// RateLimit bounds how many HTTP requests one player may make.
type RateLimit struct {
	RequestsPerMinute int `yaml:"requests-per-minute" env:"RATE_LIMIT_RPM" env-default:"600"`
	Burst             int `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"20"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// LoadFromEnv reads the configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("unable to read environment: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
