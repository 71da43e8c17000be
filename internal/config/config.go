package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                  string
	AllowedOrigin         string
	DatabaseURL           string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	TenantID              string
	SequencePrefix        string
	GatewayBaseURL        string
	GatewayAPIKey         string
	GatewayTimeoutSeconds int
	AuthSecret            string
	AccessTokenTTLMinutes int
}

func Load() Config {
	// Missing .env is fine; real deployments inject the environment.
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}
	gatewayTimeout, err := strconv.Atoi(getEnv("CARD_GATEWAY_TIMEOUT_SECONDS", "15"))
	if err != nil || gatewayTimeout < 1 {
		gatewayTimeout = 15
	}

	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigin:         getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		TenantID:              getEnv("DEFAULT_TENANT_ID", "tenant-demo"),
		SequencePrefix:        getEnv("TRANSACTION_NUMBER_PREFIX", "ELADAS"),
		GatewayBaseURL:        strings.TrimRight(os.Getenv("CARD_GATEWAY_URL"), "/"),
		GatewayAPIKey:         strings.TrimSpace(os.Getenv("CARD_GATEWAY_API_KEY")),
		GatewayTimeoutSeconds: gatewayTimeout,
		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
