package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is read once at startup. Provider choices (simulated vs. live
// gateway, kafka vs. log notifications, redis cache) are made from these
// values during wiring, never re-checked per request.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USERNAME" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_DATABASE" default:"lojinha"`
	DBSchema   string `envconfig:"DB_SCHEMA" default:"public"`

	// Empty brokers means lifecycle events only go to the log.
	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:""`
	KafkaTopic   string `envconfig:"KAFKA_TOPIC" default:"order.lifecycle"`

	// Empty address disables the cart cache.
	RedisAddr string `envconfig:"REDIS_ADDR" default:""`

	// Only "simulated" ships with this repo; a live provider plugs in behind
	// the same gateway interface.
	PaymentProvider  string        `envconfig:"PAYMENT_PROVIDER" default:"simulated"`
	PaymentDelay     time.Duration `envconfig:"PAYMENT_DELAY" default:"100ms"`
	PaymentTimeout   time.Duration `envconfig:"PAYMENT_TIMEOUT" default:"10s"`
	MaintenanceEvery time.Duration `envconfig:"MAINTENANCE_INTERVAL" default:"1m"`

	NotificationRetention time.Duration `envconfig:"NOTIFICATION_RETENTION" default:"720h"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
