package config

import (
	"os"
	"strings"
	"time"
)

// SchemaCacheTTL bounds how long provider table schemas are served from
// cache before re-discovery.
var SchemaCacheTTL = 5 * time.Minute

// Server captures process-level configuration.
type Server struct {
	Addr string

	// Empty DSN means in-memory stores (local development, tests).
	PostgresDSN string
	// Empty URL disables the redis schema cache.
	RedisURL string

	JWTSigningKey string
	// 32-byte key (base64 or raw) used to seal provider tokens at rest.
	TokenSealKey string

	AirtableClientID     string
	AirtableClientSecret string
	AirtableRedirectURI  string

	FrontendURL string
	BackendURL  string

	// Empty broker list disables record event publishing.
	KafkaBrokers []string
	KafkaTopic   string
}

// FromEnv builds a Server config from environment variables so main stays
// lean. Defaults target local development and must be overridden in
// production.
func FromEnv() Server {
	cfg := Server{
		Addr:                 getenv("FORMBRIDGE_ADDR", ":5000"),
		PostgresDSN:          os.Getenv("FORMBRIDGE_POSTGRES_DSN"),
		RedisURL:             os.Getenv("FORMBRIDGE_REDIS_URL"),
		JWTSigningKey:        getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		TokenSealKey:         getenv("TOKEN_SEAL_KEY", "dev-seal-key-change-in-production!!"),
		AirtableClientID:     os.Getenv("AIRTABLE_CLIENT_ID"),
		AirtableClientSecret: os.Getenv("AIRTABLE_CLIENT_SECRET"),
		AirtableRedirectURI:  os.Getenv("AIRTABLE_REDIRECT_URI"),
		FrontendURL:          getenv("FRONTEND_URL", "http://localhost:5173"),
		BackendURL:           getenv("BACKEND_URL", "http://localhost:5000"),
		KafkaTopic:           getenv("FORMBRIDGE_KAFKA_TOPIC", "formbridge.record-events"),
	}

	if brokers := os.Getenv("FORMBRIDGE_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
