package cli

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env holds the defaults read from the environment. Flags given on the command line
// take precedence.
type Env struct {
	LogLevel      string        `env:"CADENCE_LOG_LEVEL" envDefault:"warn"`
	LogFormat     string        `env:"CADENCE_LOG_FORMAT" envDefault:"text"`
	Interval      time.Duration `env:"CADENCE_INTERVAL" envDefault:"100ms"`
	RedisAddr     string        `env:"CADENCE_REDIS_ADDR"`
	RedisPassword string        `env:"CADENCE_REDIS_PASSWORD"`
	RedisDB       int           `env:"CADENCE_REDIS_DB" envDefault:"0"`
	RedisTTL      time.Duration `env:"CADENCE_REDIS_TTL" envDefault:"0s"`
	Processes     string        `env:"CADENCE_PROCESSES"`
}

// LoadEnv reads the environment, after loading a .env file from the working
// directory when there is one.
func LoadEnv() (Env, error) {
	// Ignore errors - the .env file might not exist and that's ok
	_ = godotenv.Load()

	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return e, nil
}
