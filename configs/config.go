package configs

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort        int
	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	DBNameTest     string
	RedisHost      string
	RedisPort      int
	RedisPassword  string
	JWTSecret      string
	TokenTTL       time.Duration
	BucketTimezone string
	NoteKey        string
	SummaryTTL     time.Duration
	LogDir         string
	RateLimitMax   int
}

func LoadConfig() Config {
	// Muat file .env
	if err := godotenv.Load(); err != nil {
		// Hanya log jika tidak dalam mode test
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	return Config{
		AppPort:        envInt("APP_PORT", 3004),
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         envInt("DB_PORT", 10501),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
		DBNameTest:     os.Getenv("DB_NAME_TEST"),
		RedisHost:      os.Getenv("REDIS_HOST"),
		RedisPort:      envInt("REDIS_PORT", 6379),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       envDuration("TOKEN_TTL", 24*time.Hour),
		BucketTimezone: envString("BUCKET_TIMEZONE", "UTC"),
		NoteKey:        os.Getenv("NOTE_ENCRYPTION_KEY"),
		SummaryTTL:     envDuration("SUMMARY_CACHE_TTL", 10*time.Minute),
		LogDir:         envString("LOG_DIR", "logs"),
		RateLimitMax:   envInt("RATE_LIMIT_MAX", 100),
	}
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	// The zone name is also sent to PostgreSQL, which does not know "Local".
	if c.BucketTimezone == "Local" {
		return errors.New(`BUCKET_TIMEZONE must be an IANA zone name such as "UTC" or "Asia/Jakarta", not "Local"`)
	}
	if _, err := time.LoadLocation(c.BucketTimezone); err != nil {
		return fmt.Errorf("BUCKET_TIMEZONE %q: %w", c.BucketTimezone, err)
	}
	return nil
}

// Location returns the time zone used for analytics buckets.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.BucketTimezone)
	if err != nil || loc == time.Local {
		return time.UTC
	}
	return loc
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
