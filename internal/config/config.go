package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	Server   ServerConfig
	Auth     AuthConfig
	Services ServicesConfig
	Consumer ConsumerConfig
}

type AppConfig struct {
	Env         string
	ServiceName string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
}

type RabbitMQConfig struct {
	URL            string
	User           string
	Password       string
	Host           string
	Port           string
	VHost          string
	ConnectTimeout time.Duration
}

type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type AuthConfig struct {
	JWTSecret   string
	AdminGroups []string
}

type ServicesConfig struct {
	MembershipURL   string
	CompetitionsURL string
	Timeout         time.Duration
}

type ConsumerConfig struct {
	Prefetch       int
	RetryDelay     time.Duration
	HandlerTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Env:         getEnv("APP_ENV", "development"),
			ServiceName: getEnv("SERVICE_NAME", "teams_service"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "teams"),
			Password:     getEnv("DB_PASSWORD", "teams"),
			DBName:       getEnv("DB_NAME", "teams"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 20),
		},
		RabbitMQ: RabbitMQConfig{
			URL:            os.Getenv("RABBITMQ_URL"),
			User:           getEnv("RABBITMQ_USER", "guest"),
			Password:       getEnv("RABBITMQ_PASSWORD", "guest"),
			Host:           getEnv("RABBITMQ_HOST", "rabbitmq"),
			Port:           getEnv("RABBITMQ_PORT", "5672"),
			VHost:          getEnv("RABBITMQ_VHOST", "/"),
			ConnectTimeout: getEnvDuration("RABBITMQ_CONNECT_TIMEOUT", 15*time.Second),
		},
		Server: ServerConfig{
			Addr:            getEnv("SERVER_ADDR", ":8003"),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", ""),
			AdminGroups: getEnvList("AUTH_ADMIN_GROUPS", []string{"admin", "coordinator"}),
		},
		Services: ServicesConfig{
			MembershipURL:   getEnv("AUTH_SERVICE_URL", "http://localhost:8000/api/v1/auth/users/"),
			CompetitionsURL: getEnv("COMPETITIONS_SERVICE_URL", "http://localhost:8002/api/v1/competitions"),
			Timeout:         getEnvDuration("SERVICES_TIMEOUT", 30*time.Second),
		},
		Consumer: ConsumerConfig{
			Prefetch:       getEnvInt("CONSUMER_PREFETCH", 10),
			RetryDelay:     getEnvDuration("CONSUMER_RETRY_DELAY", 10*time.Second),
			HandlerTimeout: getEnvDuration("CONSUMER_HANDLER_TIMEOUT", 30*time.Second),
			MaxRetries:     getEnvInt("CONSUMER_MAX_RETRIES", 5),
			RetryBackoff:   getEnvDuration("CONSUMER_RETRY_BACKOFF", 5*time.Second),
		},
	}

	return cfg
}

// AMQPURL возвращает RABBITMQ_URL, если он задан, иначе собирает адрес из частей.
func (c RabbitMQConfig) AMQPURL() string {
	if c.URL != "" {
		return c.URL
	}

	vhostPath := ""
	switch {
	case c.VHost == "" || c.VHost == "/":
	case strings.HasPrefix(c.VHost, "/"):
		vhostPath = c.VHost
	default:
		vhostPath = "/" + c.VHost
	}

	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.Host + ":" + c.Port,
	}
	return u.String() + vhostPath
}

// RedactedURL годится для логов: пароль заменяется на xxxxx.
func (c RabbitMQConfig) RedactedURL() string {
	u, err := url.Parse(c.AMQPURL())
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.DBName,
		c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
