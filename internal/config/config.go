package config // package config loads application configuration from environment variables

import (
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
    DriverMySQL  = "mysql"
    DriverMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Database settings are only required when the
// MySQL store is selected.
type Config struct {
    Env         string // application environment (e.g. "dev", "prod")
    Port        string // HTTP port to listen on
    LogLevel    string // logrus level name
    StoreDriver string // "mysql" or "memory"

    DBUser string
    DBPass string // empty allowed
    DBHost string
    DBPort string
    DBName string

    AMQPURL       string // empty disables event publication
    ConsumeEvents bool   // run the event log consumer in-process
    EventLogDir   string

    AdminUser         string
    AdminJWTSecret    string // empty disables the admin guard and /admin/login
    AdminPasswordHash string // bcrypt hash
    AdminTokenTTL     time.Duration
    BcryptCost        int

    Redis     RedisConfig
    Cache     CacheConfig
    RateLimit RateLimitConfig
}

// MissingEnvError lists required variables that were unset or empty.
type MissingEnvError struct {
    Keys []string
}

func (e *MissingEnvError) Error() string {
    return "missing required env var: " + strings.Join(e.Keys, ", ")
}

// Load reads an optional .env file and then the process environment.
// Values already present in the environment win over the file.
func Load() (Config, error) {
    _ = godotenv.Load()
    return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
    r := &reader{}
    cfg := Config{
        Env:         envStr("APP_ENV", "dev"),
        Port:        envStr("APP_PORT", "8080"),
        LogLevel:    envStr("LOG_LEVEL", "info"),
        StoreDriver: strings.ToLower(envStr("STORE_DRIVER", DriverMySQL)),

        AMQPURL:       envStr("RABBITMQ_URL", envStr("AMQP_URL", "")),
        ConsumeEvents: envBool("EVENT_CONSUMER_ENABLED", false),
        EventLogDir:   envStr("EVENT_LOG_DIR", "logs"),

        AdminUser:         envStr("ADMIN_USER", "admin"),
        AdminJWTSecret:    envStr("ADMIN_JWT_SECRET", ""),
        AdminPasswordHash: envStr("ADMIN_PASSWORD_HASH", ""),
        AdminTokenTTL:     envDur("ADMIN_TOKEN_TTL", time.Hour),
        BcryptCost:        envInt("BCRYPT_COST", 10),

        Redis:     LoadRedisConfig(),
        Cache:     LoadCacheConfig(),
        RateLimit: LoadRateLimitConfig(),
    }

    switch cfg.StoreDriver {
    case DriverMySQL:
        cfg.DBUser = r.must("DB_USER")
        cfg.DBPass = envStr("DB_PASS", "")
        cfg.DBHost = r.must("DB_HOST")
        cfg.DBPort = r.must("DB_PORT")
        cfg.DBName = r.must("DB_NAME")
    case DriverMemory:
    default:
        return Config{}, fmt.Errorf("invalid STORE_DRIVER %q: want %s or %s", cfg.StoreDriver, DriverMySQL, DriverMemory)
    }
    if cfg.AdminJWTSecret != "" {
        cfg.AdminPasswordHash = r.must("ADMIN_PASSWORD_HASH")
    }
    if cfg.ConsumeEvents && cfg.AMQPURL == "" {
        r.missing = append(r.missing, "RABBITMQ_URL")
    }

    if len(r.missing) > 0 {
        return Config{}, &MissingEnvError{Keys: r.missing}
    }
    return cfg, nil
}

// DatabaseConfig returns the subset of settings needed to reach MySQL.
func (c Config) DatabaseConfig() DatabaseConfig {
    return DatabaseConfig{User: c.DBUser, Pass: c.DBPass, Host: c.DBHost, Port: c.DBPort, Name: c.DBName}
}

// DatabaseConfig holds MySQL connection settings.
type DatabaseConfig struct {
    User, Pass, Host, Port, Name string
}

// LoadDatabaseConfig reads the DB_* variables, failing when any required one
// is missing.
func LoadDatabaseConfig() (DatabaseConfig, error) {
    r := &reader{}
    dc := DatabaseConfig{
        User: r.must("DB_USER"),
        Pass: envStr("DB_PASS", ""),
        Host: r.must("DB_HOST"),
        Port: r.must("DB_PORT"),
        Name: r.must("DB_NAME"),
    }
    if len(r.missing) > 0 {
        return DatabaseConfig{}, &MissingEnvError{Keys: r.missing}
    }
    return dc, nil
}

// IsMissing reports whether err was caused by missing variables.
func IsMissing(err error) bool {
    var me *MissingEnvError
    return errors.As(err, &me)
}

// reader collects every missing required variable so the error lists them
// all at once.
type reader struct {
    missing []string
}

func (r *reader) must(key string) string {
    v := envStr(key, "")
    if v == "" {
        r.missing = append(r.missing, key)
    }
    return v
}
