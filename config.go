package accounts

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every tunable the service needs. It is built once at boot
// and passed down read-only, handlers never reach into the environment.
type Config struct {
	SigningKey             string
	TokenExpiration        int
	Issuer                 string
	Audience               []string
	ContextKey             string
	TokenLookup            string
	AuthScheme             string
	OTPTTL                 time.Duration
	ServiceAPIKey          string
	HTTPPort               string
	DatabaseDSN            string
	NotificationURL        string
	NotificationAuthHeader string
	KafkaBroker            string
	KafkaTopic             string
	KafkaUsername          string
	KafkaPassword          string
}

// GetSigningKey returns the JWT signing secret.
func (c Config) GetSigningKey() string { return c.SigningKey }

// GetTokenExpiration returns the session lifetime in hours.
func (c Config) GetTokenExpiration() int { return c.TokenExpiration }

// GetIssuer returns the JWT issuer claim.
func (c Config) GetIssuer() string { return c.Issuer }

// GetAudience returns the JWT audience claim.
func (c Config) GetAudience() []string { return c.Audience }

// GetContextKey returns the cookie and local key under which the session
// token travels.
func (c Config) GetContextKey() string { return c.ContextKey }

// GetTokenLookup returns the ordered sources checked for the session token.
func (c Config) GetTokenLookup() string { return c.TokenLookup }

// GetAuthScheme returns the Authorization header scheme.
func (c Config) GetAuthScheme() string { return c.AuthScheme }

// GetOTPTTL returns how long a verification code stays redeemable.
func (c Config) GetOTPTTL() time.Duration { return c.OTPTTL }

// LoadConfig reads the environment, overlaying a .env file when present,
// and returns an immutable snapshot.
func LoadConfig() Config {
	if os.Getenv("ENV") != "prod" {
		_ = godotenv.Overload()
	}

	return Config{
		SigningKey:             os.Getenv("JWT_SIGNING_KEY"),
		TokenExpiration:        getenvInt("JWT_EXPIRATION_HOURS", 24),
		Issuer:                 getenv("JWT_ISSUER", "go-accounts"),
		Audience:               []string{getenv("JWT_AUDIENCE", "go-accounts")},
		ContextKey:             getenv("AUTH_CONTEXT_KEY", "access_token"),
		TokenLookup:            getenv("AUTH_TOKEN_LOOKUP", "cookie:access_token,header:Authorization"),
		AuthScheme:             getenv("AUTH_SCHEME", "Bearer"),
		OTPTTL:                 getenvDuration("OTP_TTL", 15*time.Minute),
		ServiceAPIKey:          os.Getenv("SERVICE_API_KEY"),
		HTTPPort:               getenv("HTTP_PORT", "3000"),
		DatabaseDSN:            getenv("DATABASE_DSN", "file::memory:?cache=shared"),
		NotificationURL:        os.Getenv("NOTIFICATION_URL"),
		NotificationAuthHeader: os.Getenv("NOTIFICATION_AUTH_HEADER"),
		KafkaBroker:            os.Getenv("KAFKA_BROKER"),
		KafkaTopic:             os.Getenv("KAFKA_TOPIC"),
		KafkaUsername:          os.Getenv("KAFKA_USERNAME"),
		KafkaPassword:          os.Getenv("KAFKA_PASSWORD"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
