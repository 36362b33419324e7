package config

import (
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env holds all runtime configuration. Values come from the process
// environment, optionally pre-loaded from a local .env file.
type Env struct {
	AppAddr string `env:"APP_ADDR" envDefault:":8080"`
	GinMode string `env:"GIN_MODE"`

	DBDSN       string `env:"DB_DSN"`
	MemoryStore bool   `env:"MEMORY_STORE"`

	AdminUsername      string `env:"ADMIN_USERNAME"`
	AdminPassword      string `env:"ADMIN_PASSWORD"`
	AdminPasswordHash  string `env:"ADMIN_PASSWORD_HASH"`
	AdminSessionTTLMin int64  `env:"ADMIN_SESSION_TTL_MIN" envDefault:"240"`

	FrontendBaseURL string `env:"FRONTEND_BASE_URL" envDefault:"http://localhost:3000"`
	MailFrom        string `env:"MAIL_FROM"`
	SMTPAddr        string `env:"SMTP_ADDR"`
	SMTPUsername    string `env:"SMTP_USERNAME"`
	SMTPPassword    string `env:"SMTP_PASSWORD"`
	NotifyWorkers   int    `env:"NOTIFY_WORKERS" envDefault:"2"`

	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"bookings"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	SeedAvailability bool `env:"SEED_AVAILABILITY"`
}

// LoadEnv parses configuration from the environment. A missing .env file is
// not an error; a malformed environment is fatal.
func LoadEnv() Env {
	_ = godotenv.Load()

	var e Env
	if err := env.Parse(&e); err != nil {
		log.Fatalf("failed to parse environment: %v", err)
	}
	return e
}

// SessionTTLMinutes returns the configured admin session TTL, falling back to
// the 240 minute default when the value is not positive.
func (e Env) SessionTTLMinutes() int64 {
	if e.AdminSessionTTLMin <= 0 {
		return 240
	}
	return e.AdminSessionTTLMin
}
