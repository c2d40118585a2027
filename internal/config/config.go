package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	productionEnv = "production"
	redactedMark  = "***"
)

type Config struct {
	Telegram    Telegram
	Postgres    Postgres
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"/app/tastings.db"`
	Admins      string `env:"ADMINS"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`
	TZ          string `env:"TZ" envDefault:"Europe/Amsterdam"`
	Diagnostics string `env:"ENABLE_PUBLIC_DIAGNOSTICS"`
	Analytics   string `env:"ANALYTICS_ENABLED" envDefault:"1"`
	Mongo       Mongo
	Redis       Redis
	OpsAddr     string `env:"OPS_ADDR" validate:"omitempty,hostname_port"`
	Log         Log
	Entrypoint  Entrypoint
}

type Telegram struct {
	Token   string `env:"BOT_TOKEN"`
	Timeout int    `env:"TG_TIMEOUT" envDefault:"30" validate:"min=0,max=600"`
	Debug   bool   `env:"TG_DEBUG" envDefault:"false"`
}

type Postgres struct {
	Host     string `env:"POSTGRESQL_HOST"`
	Port     string `env:"POSTGRESQL_PORT" envDefault:"5432" validate:"omitempty,numeric"`
	DBName   string `env:"POSTGRESQL_DBNAME"`
	User     string `env:"POSTGRESQL_USER"`
	Password string `env:"POSTGRESQL_PASSWORD"`
	SSLMode  string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
}

type Mongo struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DATABASE" envDefault:"teadiary"`
}

type Redis struct {
	URL      string        `env:"REDIS_URL"`
	StateTTL time.Duration `env:"STATE_TTL" envDefault:"24h"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`
}

type Entrypoint struct {
	Maintenance    string `env:"MAINTENANCE"`
	SkipMigrations string `env:"SKIP_MIGRATIONS"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using process environment")
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config parse error: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}
	return cfg, nil
}

// RequireToken is checked only by commands that talk to telegram.
func (c *Config) RequireToken() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	return nil
}

func (p Postgres) complete() bool {
	return p.Host != "" && p.Port != "" && p.DBName != "" && p.User != "" && p.Password != ""
}

func (c *Config) Driver() string {
	if c.Postgres.complete() {
		return DriverPostgres
	}
	return DriverSQLite
}

// DatabaseURL returns a postgres URL when every POSTGRESQL_* variable is set,
// otherwise a sqlite file path.
func (c *Config) DatabaseURL() string {
	if c.Driver() == DriverSQLite {
		return c.SQLitePath
	}
	return c.postgresURL(url.UserPassword(c.Postgres.User, c.Postgres.Password))
}

// RedactedDatabaseURL is safe to log.
func (c *Config) RedactedDatabaseURL() string {
	if c.Driver() == DriverSQLite {
		return "sqlite://" + c.SQLitePath
	}
	// The URL encoder would escape the mark, so it goes in after encoding.
	// The user part is escaped, so its first @ is the separator.
	return strings.Replace(c.postgresURL(url.User(c.Postgres.User)), "@", ":"+redactedMark+"@", 1)
}

func (c *Config) postgresURL(user *url.Userinfo) string {
	u := url.URL{
		Scheme:   "postgresql",
		User:     user,
		Host:     net.JoinHostPort(c.Postgres.Host, c.Postgres.Port),
		Path:     "/" + c.Postgres.DBName,
		RawQuery: url.Values{"sslmode": []string{c.Postgres.SSLMode}}.Encode(),
	}
	return u.String()
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), productionEnv)
}

func (c *Config) PublicDiagnostics() bool {
	return Truthy(c.Diagnostics)
}

func (c *Config) AnalyticsEnabled() bool {
	return Truthy(c.Analytics)
}

func (c *Config) Maintenance() bool {
	return Truthy(c.Entrypoint.Maintenance)
}

func (c *Config) SkipMigrations() bool {
	return Truthy(c.Entrypoint.SkipMigrations)
}

// AdminIDs parses ADMINS. Ids may be separated by commas, semicolons or spaces.
func (c *Config) AdminIDs() map[int64]struct{} {
	admins := make(map[int64]struct{})
	fields := strings.FieldsFunc(c.Admins, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			logrus.Warnf("config, skip invalid admin id %q", f)
			continue
		}
		admins[id] = struct{}{}
	}
	return admins
}

// Truthy accepts 1, true, t, yes, y in any case.
func Truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "t", "yes", "y":
		return true
	}
	return false
}

// SetupLogging applies LOG_LEVEL and LOG_FORMAT to the standard logrus logger.
func (c *Config) SetupLogging() {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		logrus.Warnf("config, unknown log level %q, using info", c.Log.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if c.Log.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
