package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	MongoURI       string
	RedisURI       string
	JWTSecret      string
	TokenLifetime  time.Duration // signed token validity, 1-7 days
	BcryptCost     int           // bcrypt work factor, 10-12
	Port           string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL
	Environment    string   // ENV: production, development, etc.
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{getEnv("FRONTEND_URL", "http://localhost:3000")}
	}

	tokenDays := getEnvInt("TOKEN_LIFETIME_DAYS", 7)
	if tokenDays < 1 {
		tokenDays = 1
	}
	if tokenDays > 7 {
		tokenDays = 7
	}

	bcryptCost := getEnvInt("BCRYPT_COST", 12)
	if bcryptCost < 10 {
		bcryptCost = 10
	}
	if bcryptCost > 12 {
		bcryptCost = 12
	}

	return &Config{
		MongoURI:       getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/flodiary")),
		RedisURI:       getEnv("REDIS_URI", "redis://localhost:6379/0"),
		JWTSecret:      getEnv("JWT_SECRET", "flodiary-secret-key-change-in-production"),
		TokenLifetime:  time.Duration(tokenDays) * 24 * time.Hour,
		BcryptCost:     bcryptCost,
		Port:           getEnv("PORT", "3005"),
		AllowedOrigins: allowedOrigins,
		Environment:    env,
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
