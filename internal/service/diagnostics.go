package service

import (
	"context"
	"fmt"
	"time"

	"github.com/chucky-1/teadiary/internal/config"
	"github.com/chucky-1/teadiary/internal/repository"
)

const pingTimeout = 5 * time.Second

type diagnosticsRepo interface {
	repository.Diagnostics
	CountTastings(ctx context.Context) (int64, error)
}

// DBInfo is what /dbinfo may reveal about the database. It never holds a password.
type DBInfo struct {
	Driver      string
	Name        string
	Host        string
	SSLMode     string
	File        string
	RedactedURL string
	AppEnv      string
	TZ          string
}

func NewDBInfo(cfg *config.Config) DBInfo {
	info := DBInfo{
		Driver:      cfg.Driver(),
		RedactedURL: cfg.RedactedDatabaseURL(),
		AppEnv:      cfg.AppEnv,
		TZ:          cfg.TZ,
	}
	if info.Driver == config.DriverSQLite {
		info.File = cfg.SQLitePath
		return info
	}
	info.Driver = "postgresql"
	info.Name = cfg.Postgres.DBName
	info.Host = cfg.Postgres.Host
	info.SSLMode = cfg.Postgres.SSLMode
	return info
}

// Diagnostics decides who may run /health, /dbinfo and /whoami and renders the answers.
//
// In production without admins nothing is available. The public override
// replaces the admin variants so a command is never served twice.
type Diagnostics struct {
	repo       diagnosticsRepo
	info       DBInfo
	admins     map[int64]struct{}
	production bool
	public     bool
}

func NewDiagnostics(repo diagnosticsRepo, info DBInfo, admins map[int64]struct{}, production, publicOverride bool) *Diagnostics {
	return &Diagnostics{
		repo:       repo,
		info:       info,
		admins:     admins,
		production: production,
		public:     publicOverride && !production,
	}
}

func (d *Diagnostics) RouterEnabled() bool {
	return !(d.production && len(d.admins) == 0)
}

// Public reports whether /health and /dbinfo answer everyone.
func (d *Diagnostics) Public() bool {
	return d.public
}

func (d *Diagnostics) AdminGated() bool {
	return d.RouterEnabled() && !d.public
}

func (d *Diagnostics) IsAdmin(userID int64) bool {
	_, ok := d.admins[userID]
	return ok
}

func (d *Diagnostics) Health(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := d.repo.Ping(ctx); err != nil {
		return fmt.Sprintf("DB: FAIL — %v", err)
	}
	return "DB: OK"
}

func (d *Diagnostics) DBInfo() string {
	var line string
	if d.info.Driver == config.DriverSQLite {
		line = fmt.Sprintf("DB: sqlite | file=%s", d.info.File)
	} else {
		line = fmt.Sprintf("DB: %s | db=%s | host=%s | sslmode=%s", d.info.Driver, d.info.Name, d.info.Host, d.info.SSLMode)
	}
	return fmt.Sprintf("%s\nAPP_ENV=%s | TZ=%s", line, d.info.AppEnv, d.info.TZ)
}

func (d *Diagnostics) AdminHealth(ctx context.Context) (string, error) {
	name, err := d.repo.CurrentDatabase(ctx)
	if err != nil {
		return "", fmt.Errorf("service.Diagnostics, current database error: %w", err)
	}
	count, err := d.repo.CountTastings(ctx)
	if err != nil {
		return "", fmt.Errorf("service.Diagnostics, count tastings error: %w", err)
	}
	return fmt.Sprintf("db=%s\ncount(tastings)=%d", name, count), nil
}

func (d *Diagnostics) AdminDBInfo() string {
	return "DB URL: " + d.info.RedactedURL
}

func (d *Diagnostics) Whoami(userID int64) string {
	return fmt.Sprintf("your_id=%d\nis_admin=%t", userID, d.IsAdmin(userID))
}
