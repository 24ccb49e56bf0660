package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Required values are enforced by must(); optional
// subsystems (object-store CDN, rabbit events) carry their own enable flags.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTSecret      string // base64-encoded secret used to sign access tokens
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	MinioEndpoint  string // object store endpoint (host:port)
	MinioAccessKey string // object store access key
	MinioSecretKey string // object store secret key
	MinioBucket    string // bucket holding wardrobe images
	MinioUseSSL    bool   // whether to talk TLS to the object store

	CDNEnabled bool   // translate storage refs to CDN URLs when true
	CDNDomain  string // CDN domain serving the bucket, e.g. cdn.example.com

	CookieSecure   bool   // set Secure on auth cookies
	CookieSameSite string // SameSite mode for auth cookies (Lax/Strict/None)

	EventsEnabled bool // publish wardrobe events to rabbitmq when true
}

// Load reads configuration values from environment variables and returns a
// Config. Missing required variables cause the program to exit with a fatal
// log message so a misconfigured instance never starts half-wired.
func Load() Config {
	return Config{
		Env:  must("APP_ENV"),
		Port: must("APP_PORT"),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"), // empty allowed
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		MinioEndpoint:  must("MINIO_ENDPOINT"),
		MinioAccessKey: must("MINIO_ACCESS_KEY"),
		MinioSecretKey: must("MINIO_SECRET_KEY"),
		MinioBucket:    must("MINIO_BUCKET"),
		MinioUseSSL:    envBool("MINIO_USE_SSL", false),

		CDNEnabled: envBool("CDN_ENABLED", false),
		CDNDomain:  os.Getenv("CDN_DOMAIN"),

		CookieSecure:   envBool("COOKIE_SECURE", false),
		CookieSameSite: envStr("COOKIE_SAME_SITE", "Lax"),

		EventsEnabled: envBool("EVENTS_ENABLED", false),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
