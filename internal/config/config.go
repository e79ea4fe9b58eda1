package config // package config loads application configuration from environment variables

import (
	"fmt"     // fmt builds descriptive configuration errors
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings normalizes enum-like values
	"time"    // time parses durations

	"github.com/joho/godotenv" // godotenv loads a local .env file into the environment
)

// Supported values for DB_DRIVER.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  MySQL connection fields are only required when
// DBDriver is "mysql"; the embedded SQLite store needs nothing but a path.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBDriver       string        // "sqlite" or "mysql"
	SQLitePath     string        // file path of the SQLite database
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	BcryptCost     int           // bcrypt cost for password hashing
	RequestTimeout time.Duration // upper bound for the store work of one request
	LogLevel       string        // logrus level name
	LogFormat      string        // "text" or "json"
	Broker         BrokerConfig  // RabbitMQ settings for claim events
}

// Load reads configuration values from the environment and returns a Config.
// A .env file in the working directory is loaded first when present; values
// already set in the environment win over the file.
func Load() (Config, error) {
	_ = godotenv.Load() // a missing .env file is not an error

	cfg := Config{
		Env:        getenv("APP_ENV", "dev"),
		Port:       getenv("APP_PORT", "8080"),
		DBDriver:   strings.ToLower(getenv("DB_DRIVER", DriverSQLite)),
		SQLitePath: getenv("SQLITE_PATH", "lostfound.db"),
		DBUser:     os.Getenv("DB_USER"),
		DBPass:     os.Getenv("DB_PASS"), // empty allowed
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getenv("DB_PORT", "3306"),
		DBName:     os.Getenv("DB_NAME"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogFormat:  strings.ToLower(getenv("LOG_FORMAT", "text")),
		Broker:     LoadBrokerConfig(),
	}

	var err error
	if cfg.BcryptCost, err = intVar("BCRYPT_COST", 10); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = durVar("REQUEST_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}

	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverMySQL:
		for key, v := range map[string]string{"DB_USER": cfg.DBUser, "DB_HOST": cfg.DBHost, "DB_NAME": cfg.DBName} {
			if v == "" {
				return Config{}, fmt.Errorf("missing required env var: %s", key)
			}
		}
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

// intVar is like getenv() but converts the value into an integer.  An unset
// variable yields def; a malformed one is an error.
func intVar(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q", key, s)
	}
	return n, nil
}

func durVar(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration for %s: %q", key, s)
	}
	return d, nil
}
