package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for TTLs.
type Config struct {
	Env        string        // application environment (e.g. "dev", "prod")
	Port       string        // HTTP port to listen on
	DBUser     string        // database username
	DBPass     string        // database password (optional)
	DBHost     string        // database host address
	DBPort     string        // database port number
	DBName     string        // database name
	JWTSecret  string        // base64 secret used to sign JWTs
	JWTIssuer  string        // issuer claim stamped on every token
	AccessTTL  time.Duration // access token time-to-live
	RefreshTTL time.Duration // refresh token time-to-live
	BcryptCost int           // bcrypt cost for password hashing

	RateLimitEnabled  bool // per-IP token bucket on the credential endpoints
	RateLimitCapacity int  // bucket capacity (requests per refill interval burst)

	QueueURL string // AMQP connection string; empty disables order events
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:        must("APP_ENV"),      // environment (dev/test/prod)
		Port:       must("APP_PORT"),     // port to bind the HTTP server
		DBUser:     must("DB_USER"),      // database user
		DBPass:     os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:     must("DB_HOST"),      // database host
		DBPort:     must("DB_PORT"),      // database port
		DBName:     must("DB_NAME"),      // database name
		JWTSecret:  must("JWT_SECRET"),   // base64 secret for signing JWTs
		JWTIssuer:  envOr("JWT_ISSUER", "shop-backend"),
		AccessTTL:  time.Duration(intOr("ACCESS_TOKEN_TTL_MIN", 60)) * time.Minute,
		RefreshTTL: time.Duration(intOr("REFRESH_TOKEN_TTL_DAYS", 14)) * 24 * time.Hour,
		BcryptCost: intOr("BCRYPT_COST", 10),

		RateLimitEnabled:  boolOr("RATE_LIMIT_ENABLED", true),
		RateLimitCapacity: intOr("RATE_LIMIT_CAPACITY", 10),

		QueueURL: os.Getenv("QUEUE_URL"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// envOr returns the variable's value, or def when unset.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intOr is like envOr for integers.  A malformed value is fatal rather than
// silently replaced.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func boolOr(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Fatalf("invalid bool for %s: %q", key, s)
	}
	return b
}
