package repository

import (
	"context"
	"errors"
	"time"

	"github.com/chucky-1/teadiary/internal/model"
)

var (
	TastingNotFoundErr = errors.New("tasting not found")
	DuplicateSeqErr    = errors.New("tasting sequence number already taken")
	UnknownColumnErr   = errors.New("unknown tasting column")
)

//go:generate mockery --name=Tastings
//go:generate mockery --name=Events

type Tastings interface {
	// CreateTasting assigns ID, SeqNo and CreatedAt and stores infusions and photos in one transaction.
	CreateTasting(ctx context.Context, t *model.Tasting, infusions []model.Infusion, photoIDs []string) error
	GetTasting(ctx context.Context, userID, id int64) (*model.Tasting, error)
	GetTastingBySeq(ctx context.Context, userID int64, seqNo int) (*model.Tasting, error)
	// FindTastings returns rows with id < beforeID (0 means no bound), newest first.
	FindTastings(ctx context.Context, filter model.Filter, beforeID int64, limit int) ([]model.Tasting, error)
	Infusions(ctx context.Context, tastingID int64) ([]model.Infusion, error)
	// Photos returns up to limit file ids in upload order and the total number of photos.
	Photos(ctx context.Context, tastingID int64, limit int) ([]string, int, error)
	UpdateTasting(ctx context.Context, userID, id int64, column string, value any) error
	DeleteTasting(ctx context.Context, userID, id int64) error
	CountTastings(ctx context.Context) (int64, error)
}

type Users interface {
	EnsureUser(ctx context.Context, id int64) (*model.User, error)
	SetUserTZ(ctx context.Context, id int64, offsetMin int) error
}

type Events interface {
	AddEvent(ctx context.Context, e *model.Event) error
	EventStats(ctx context.Context, from, to time.Time) (*model.DayStats, error)
}

type Diagnostics interface {
	Ping(ctx context.Context) error
	CurrentDatabase(ctx context.Context) (string, error)
}

// Store is a complete SQL backend.
type Store interface {
	Tastings
	Users
	Events
	Diagnostics
	Close()
}

// editableColumns is the whitelist for UpdateTasting.
var editableColumns = map[string]struct{}{
	"name":          {},
	"year":          {},
	"region":        {},
	"category":      {},
	"grams":         {},
	"temp_c":        {},
	"tasted_at":     {},
	"gear":          {},
	"aroma_dry":     {},
	"aroma_warmed":  {},
	"effects_csv":   {},
	"scenarios_csv": {},
	"rating":        {},
	"summary":       {},
}

func checkColumn(column string) error {
	if _, ok := editableColumns[column]; !ok {
		return UnknownColumnErr
	}
	return nil
}

const tastingColumns = `id, user_id, seq_no, name, year, region, category, grams, temp_c, tasted_at, gear,
	aroma_dry, aroma_warmed, aroma_after, effects_csv, scenarios_csv, rating, summary, created_at`

type scanner interface {
	Scan(dest ...any) error
}

// scanTasting reads tastingColumns. createdAt receives the driver specific timestamp.
func scanTasting(row scanner, t *model.Tasting, createdAt any) error {
	return row.Scan(&t.ID, &t.UserID, &t.SeqNo, &t.Name, &t.Year, &t.Region, &t.Category, &t.Grams, &t.TempC,
		&t.TastedAt, &t.Gear, &t.AromaDry, &t.AromaWarmed, &t.AromaAfter, &t.EffectsCSV, &t.ScenariosCSV,
		&t.Rating, &t.Summary, createdAt)
}
