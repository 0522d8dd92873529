package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time‑to‑live in minutes
	RefreshTTLDays int    // refresh token time‑to‑live in days
	BcryptCost     int    // bcrypt cost for password hashing

	TimeZone         string // IANA zone all session dates are entered and displayed in
	SessionBufferMin int    // cleaning break between sessions in the same hall, minutes

	SMTPHost string // SMTP relay host for outgoing mail
	SMTPPort int    // SMTP relay port
	SMTPUser string // SMTP username (empty disables mail)
	SMTPPass string // SMTP password
	MailFrom string // From address on outgoing letters

	TMDBBaseURL string // TMDB API base URL
	TMDBKey     string // TMDB API bearer token (empty disables lookups)

	PublicBaseURL string // external base URL used in e-mail verification links
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Values with sensible
// defaults (timezone, buffer, mail, TMDB) fall back instead of failing.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),      // environment (dev/test/prod)
		Port:           must("APP_PORT"),     // port to bind the HTTP server
		DBUser:         must("DB_USER"),      // database user
		DBPass:         os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:         must("DB_HOST"),      // database host
		DBPort:         must("DB_PORT"),      // database port
		DBName:         must("DB_NAME"),      // database name
		JWTSecret:      must("JWT_SECRET"),   // secret used for signing JWTs
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),   // TTL for access tokens in minutes
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"), // TTL for refresh tokens in days
		BcryptCost:     mustInt("BCRYPT_COST"),            // bcrypt cost factor

		TimeZone:         orDefault("CINEMA_TZ", "Europe/Kyiv"),   // cinema local zone
		SessionBufferMin: orDefaultInt("SESSION_BUFFER_MIN", 15),  // break between sessions

		SMTPHost: orDefault("SMTP_HOST", "localhost"),
		SMTPPort: orDefaultInt("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		MailFrom: orDefault("MAIL_FROM", "no-reply@cinema.local"),

		TMDBBaseURL: orDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBKey:     os.Getenv("TMDB_API_KEY"),

		PublicBaseURL: orDefault("PUBLIC_BASE_URL", "http://localhost:8080"),
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

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// orDefault returns the variable's value or the fallback when it is unset.
func orDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// orDefaultInt is like orDefault() for integer variables.  A malformed value
// is still fatal: silently falling back would hide a configuration typo.
func orDefaultInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
