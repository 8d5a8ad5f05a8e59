// Package config provides centralized default values for Pulse
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Database Configuration
	// When DatabaseURL is set the remote libsql driver is used, otherwise
	// a local SQLite file at DatabasePath.
	DatabasePath      string
	DatabaseURL       string
	DatabaseAuthToken string
	DBMaxOpenConns    int
	DBMaxIdleConns    int

	// Event Buffer Configuration
	EventBufferCap    int
	RealTimeMirrorCap int
	RealTimeWindow    time.Duration

	// Remote Collector Configuration
	CollectorEndpoint string
	CollectorTimeout  time.Duration

	// Background Jobs
	CompactionSchedule  string
	MirrorPruneSchedule string

	// Auth Configuration
	JWTSecret      string
	AdminPassword  string
	TokenLifetime  time.Duration
	AllowedOrigins []string

	// Observability
	SlowQueryThreshold time.Duration
	LogDirectory       string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Database Configuration
	DatabasePath = getEnvString("DATABASE_PATH", "pulse.db")
	DatabaseURL = getEnvString("DATABASE_URL", "")
	DatabaseAuthToken = getEnvString("DATABASE_AUTH_TOKEN", "")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)

	// Event Buffer Configuration
	EventBufferCap = getEnvInt("EVENT_BUFFER_CAP", 1000)
	RealTimeMirrorCap = getEnvInt("REALTIME_MIRROR_CAP", 100)
	RealTimeWindow = getEnvDuration("REALTIME_WINDOW", 30*time.Minute)

	// Remote Collector Configuration
	CollectorEndpoint = getEnvString("COLLECTOR_ENDPOINT", "")
	CollectorTimeout = getEnvDuration("COLLECTOR_TIMEOUT", 5*time.Second)

	// Background Jobs
	CompactionSchedule = getEnvString("COMPACTION_SCHEDULE", "@every 5m")
	MirrorPruneSchedule = getEnvString("MIRROR_PRUNE_SCHEDULE", "@every 1m")

	// Auth Configuration
	JWTSecret = getEnvString("JWT_SECRET", "")
	AdminPassword = getEnvString("ADMIN_PASSWORD", "")
	TokenLifetime = getEnvDuration("TOKEN_LIFETIME", 24*time.Hour)
	AllowedOrigins = strings.Split(getEnvString("ALLOWED_ORIGINS",
		"http://localhost:3000,http://localhost:4321,http://127.0.0.1:3000,http://127.0.0.1:4321"), ",")

	// Observability
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 50*time.Millisecond)
	LogDirectory = getEnvString("LOG_DIRECTORY", "logs")
}

// GetSlowQueryThreshold returns the configured slow query threshold.
func GetSlowQueryThreshold() time.Duration {
	return SlowQueryThreshold
}
