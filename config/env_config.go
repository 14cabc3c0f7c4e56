package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type EnvConfig struct {
	Postgres struct {
		HOST     string
		Database string
		Username string
		Password string
		Port     string
		SSLMode  string
	}
	JWT struct {
		SecretKey string
		Algorithm string
	}
	CORS struct {
		AllowDomains string
		GlobalDomain string
	}
	Redis struct {
		Password  string
		Database  int
		RedisHost string
		RedisPort string
	}
	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}
	Minio struct {
		Endpoint      string
		RootUser      string
		RootPassword  string
		UseSSL        bool
		ArchiveBucket string
	}
	Session struct {
		Required bool
		CacheTTL time.Duration
	}
	ExternalService struct {
		AuthorizationServiceURL string
	}
	Grafana struct {
		OTLPEndpoint string
		ServiceName  string
	}
	Catalog struct {
		MaxPayloadSize  int64
		DefaultPageSize int
	}
	PrivateKey string

	Environment struct {
		Mode  string
		Group string
	}
	DomainName string
	Port       string
}

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	// Postgres
	config.Postgres.HOST = getEnv("PGPOOL_HOST", "localhost")
	config.Postgres.Database = getEnv("PGPOOL_DB", "catalog")
	config.Postgres.Username = os.Getenv("PGPOOL_USER")
	config.Postgres.Password = os.Getenv("PGPOOL_PASSWORD")
	config.Postgres.Port = getEnv("PGPOOL_PORT", "5432")
	config.Postgres.SSLMode = getEnv("PGPOOL_SSLMODE", "disable")

	// JWT
	config.JWT.SecretKey = os.Getenv("JWT_SECRET_KEY")
	config.JWT.Algorithm = getEnv("JWT_ALGORITHM", "HS256")

	config.CORS.AllowDomains = os.Getenv("ALLOWED_DOMAINS")
	config.CORS.GlobalDomain = os.Getenv("GLOBAL_DOMAIN")

	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Redis.Database, _ = strconv.Atoi(os.Getenv("REDIS_DB"))
	config.Redis.RedisHost = getEnv("REDIS_HOST", "localhost")
	config.Redis.RedisPort = getEnv("REDIS_PORT", "6379")

	// RabbitMQ
	config.RabbitMQ.Host = getEnv("RABBITMQ_HOST", "localhost")
	config.RabbitMQ.Port = getEnv("RABBITMQ_PORT", "5672")
	config.RabbitMQ.Username = getEnv("RABBITMQ_USER", "guest")
	config.RabbitMQ.Password = getEnv("RABBITMQ_PASSWORD", "guest")

	config.Minio.Endpoint = os.Getenv("MINIO_ENDPOINT")
	config.Minio.RootUser = os.Getenv("MINIO_ROOT_USER")
	config.Minio.RootPassword = os.Getenv("MINIO_ROOT_PASSWORD")
	config.Minio.UseSSL = getEnvBool("MINIO_USE_SSL", false)
	config.Minio.ArchiveBucket = getEnv("MINIO_ARCHIVE_BUCKET", "catalog-revisions")

	// Session
	config.Session.Required = getEnvBool("SESSION_ID_REQUIRED", true)
	config.Session.CacheTTL = time.Duration(getEnvInt("SESSION_CACHE_TTL", 60)) * time.Second

	config.ExternalService.AuthorizationServiceURL = getEnv("AUTHORIZATION_SERVICE_URL", "http://localhost:8080")

	config.Catalog.MaxPayloadSize = int64(getEnvInt("CATALOG_MAX_PAYLOAD_SIZE", 20*1024*1024))
	config.Catalog.DefaultPageSize = getEnvInt("CATALOG_DEFAULT_PAGE_SIZE", 50)

	config.PrivateKey = os.Getenv("PRIVATE_KEY")

	// Grafana/OpenTelemetry. An empty endpoint keeps logs on stdout and disables exporters.
	grafanaEndpoint := os.Getenv("GRAFANA_OTLP_ENDPOINT")
	grafanaEndpoint = strings.TrimPrefix(grafanaEndpoint, "https://")
	config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "http://")
	config.Grafana.ServiceName = getEnv("SERVICE_NAME", "gau-catalog-service")

	config.Environment.Mode = getEnv("DEPLOY_ENV", "development")
	config.Environment.Group = getEnv("GROUP_NAME", "local")

	config.DomainName = getEnv("DOMAIN_NAME", "http://localhost:8080")
	config.Port = getEnv("PORT", "8080")

	return &config
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}
