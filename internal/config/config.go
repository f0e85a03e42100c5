package config

import (
	"os"
	"strconv"
)

type TravelSureConfig struct {
	Port        string
	APIKey      string
	OperatorID  string
	PostgresCfg PostgresConfig
	RedisCfg    RedisConfig
	RabbitMQCfg RabbitMQConfig
	VerifierCfg VerifierConfig
	EngineCfg   EngineConfig
}

type PostgresConfig struct {
	Enabled  bool
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	Enabled  bool
	Username string
	Password string
	Host     string
	Port     string
}

type VerifierConfig struct {
	BaseURL        string
	TimeoutSeconds int
	NetworkID      string
}

type EngineConfig struct {
	ExpiryWindowSeconds  int64
	SweepIntervalSeconds int64
	CorrelationNamespace string
	ResponseBudget       int64
}

func New() *TravelSureConfig {
	return &TravelSureConfig{
		Port:       getEnvOrDefault("PORT", "8086"),
		APIKey:     getEnvOrDefault("API_KEY", ""),
		OperatorID: getEnvOrDefault("OPERATOR_ID", "travelsure-admin"),
		PostgresCfg: PostgresConfig{
			Enabled:  getEnvBoolOrDefault("POSTGRES_ENABLED", true),
			DBname:   getEnvOrDefault("POSTGRES_DB", "travelsure"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RedisCfg: RedisConfig{
			Enabled:  getEnvBoolOrDefault("REDIS_ENABLED", true),
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getEnvIntOrDefault("REDIS_DB", 0),
		},
		RabbitMQCfg: RabbitMQConfig{
			Enabled:  getEnvBoolOrDefault("RABBITMQ_ENABLED", true),
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Host:     getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		VerifierCfg: VerifierConfig{
			BaseURL:        getEnvOrDefault("VERIFIER_BASE_URL", "https://flightdelay.app/api/quote"),
			TimeoutSeconds: getEnvIntOrDefault("VERIFIER_TIMEOUT_SECONDS", 15),
			NetworkID:      getEnvOrDefault("VERIFIER_NETWORK_ID", "flightdelay-main"),
		},
		EngineCfg: EngineConfig{
			ExpiryWindowSeconds:  getEnvInt64OrDefault("EXPIRY_WINDOW_SECONDS", 24*60*60),
			SweepIntervalSeconds: getEnvInt64OrDefault("SWEEP_INTERVAL_SECONDS", 60),
			CorrelationNamespace: getEnvOrDefault("CORRELATION_NAMESPACE", "travelsure"),
			ResponseBudget:       getEnvInt64OrDefault("RESPONSE_BUDGET", 300_000),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
