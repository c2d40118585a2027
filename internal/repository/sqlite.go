package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chucky-1/teadiary/internal/model"
	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite"
)

//go:embed schema/sqlite.sql
var sqliteSchema string

// SQLite is the fallback store used when postgres is not configured.
type SQLite struct {
	db    *sql.DB
	path  string
	clock clockwork.Clock
}

// OpenSQLite opens the database file and applies the schema.
func OpenSQLite(ctx context.Context, path string, clock clockwork.Clock) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("repository.SQLite, open error: %w", err)
	}
	// one connection keeps :memory: databases and pragmas alive
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
		if _, err = db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("repository.SQLite, %s error: %w", pragma, err)
		}
	}
	if _, err = db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("repository.SQLite, apply schema error: %w", err)
	}
	return &SQLite{db: db, path: path, clock: clock}, nil
}

func (s *SQLite) Close() {
	_ = s.db.Close()
}

func (s *SQLite) CreateTasting(ctx context.Context, t *model.Tasting, infusions []model.Infusion, photoIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository.SQLite, begin error: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := s.clock.Now()
	if _, err = tx.ExecContext(ctx, `INSERT INTO users (id, created_at) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`,
		t.UserID, now.Unix()); err != nil {
		return fmt.Errorf("repository.SQLite, ensure user error: %w", err)
	}
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq_no), 0) + 1 FROM tastings WHERE user_id = ?`, t.UserID).Scan(&t.SeqNo)
	if err != nil {
		return fmt.Errorf("repository.SQLite, next seq error: %w", err)
	}

	query := `INSERT INTO tastings (user_id, seq_no, name, year, region, category, grams, temp_c, tasted_at, gear,
		aroma_dry, aroma_warmed, aroma_after, effects_csv, scenarios_csv, rating, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, query, t.UserID, t.SeqNo, t.Name, t.Year, t.Region, t.Category, t.Grams, t.TempC,
		t.TastedAt, t.Gear, t.AromaDry, t.AromaWarmed, t.AromaAfter, t.EffectsCSV, t.ScenariosCSV, t.Rating, t.Summary,
		now.Unix())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return DuplicateSeqErr
		}
		return fmt.Errorf("repository.SQLite, create tasting error: %w", err)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("repository.SQLite, tasting id error: %w", err)
	}
	t.CreatedAt = time.Unix(now.Unix(), 0).UTC()

	for i := range infusions {
		inf := &infusions[i]
		inf.TastingID = t.ID
		res, err = tx.ExecContext(ctx, `INSERT INTO infusions (tasting_id, n, seconds, liquor_color, taste, special_notes, body, aftertaste)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, inf.N, inf.Seconds, inf.LiquorColor, inf.Taste, inf.SpecialNotes, inf.Body, inf.Aftertaste)
		if err != nil {
			return fmt.Errorf("repository.SQLite, create infusion error: %w", err)
		}
		if inf.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("repository.SQLite, infusion id error: %w", err)
		}
	}
	for _, fileID := range photoIDs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO photos (tasting_id, file_id) VALUES (?, ?)`, t.ID, fileID); err != nil {
			return fmt.Errorf("repository.SQLite, create photo error: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("repository.SQLite, commit error: %w", err)
	}
	return nil
}

func (s *SQLite) GetTasting(ctx context.Context, userID, id int64) (*model.Tasting, error) {
	query := `SELECT ` + tastingColumns + ` FROM tastings WHERE id = ? AND user_id = ?`
	return s.getTasting(ctx, query, id, userID)
}

func (s *SQLite) GetTastingBySeq(ctx context.Context, userID int64, seqNo int) (*model.Tasting, error) {
	query := `SELECT ` + tastingColumns + ` FROM tastings WHERE user_id = ? AND seq_no = ?`
	return s.getTasting(ctx, query, userID, seqNo)
}

func (s *SQLite) getTasting(ctx context.Context, query string, args ...any) (*model.Tasting, error) {
	t, err := s.scanTasting(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, TastingNotFoundErr
	} else if err != nil {
		return nil, fmt.Errorf("repository.SQLite, get tasting error: %w", err)
	}
	return t, nil
}

func (s *SQLite) scanTasting(row scanner) (*model.Tasting, error) {
	var (
		t         model.Tasting
		createdAt int64
	)
	if err := scanTasting(row, &t, &createdAt); err != nil {
		return nil, err
	}
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &t, nil
}

// FindTastings matches name and category in Go because sqlite LOWER only folds ASCII.
func (s *SQLite) FindTastings(ctx context.Context, filter model.Filter, beforeID int64, limit int) ([]model.Tasting, error) {
	where := []string{"user_id = ?"}
	args := []any{filter.UserID}
	if beforeID > 0 {
		where = append(where, "id < ?")
		args = append(args, beforeID)
	}
	if filter.Year != nil {
		where = append(where, "year = ?")
		args = append(args, *filter.Year)
	}
	if filter.MinRating != nil {
		where = append(where, "rating >= ?")
		args = append(args, *filter.MinRating)
	}
	query := fmt.Sprintf(`SELECT %s FROM tastings WHERE %s ORDER BY id DESC`, tastingColumns, strings.Join(where, " AND "))
	textFilter := filter.Name != "" || filter.Category != ""
	if !textFilter {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository.SQLite, find tastings error: %w", err)
	}
	defer rows.Close()

	name := strings.ToLower(filter.Name)
	var tastings []model.Tasting
	for rows.Next() && len(tastings) < limit {
		t, err := s.scanTasting(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.SQLite, scan tasting error: %w", err)
		}
		if name != "" && !strings.Contains(strings.ToLower(t.Name), name) {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(t.Category, filter.Category) {
			continue
		}
		tastings = append(tastings, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.SQLite, find tastings error: %w", err)
	}
	return tastings, nil
}

func (s *SQLite) Infusions(ctx context.Context, tastingID int64) ([]model.Infusion, error) {
	query := `SELECT id, tasting_id, n, seconds, liquor_color, taste, special_notes, body, aftertaste
		FROM infusions WHERE tasting_id = ? ORDER BY n`
	rows, err := s.db.QueryContext(ctx, query, tastingID)
	if err != nil {
		return nil, fmt.Errorf("repository.SQLite, get infusions error: %w", err)
	}
	defer rows.Close()

	var infusions []model.Infusion
	for rows.Next() {
		var inf model.Infusion
		err = rows.Scan(&inf.ID, &inf.TastingID, &inf.N, &inf.Seconds, &inf.LiquorColor, &inf.Taste,
			&inf.SpecialNotes, &inf.Body, &inf.Aftertaste)
		if err != nil {
			return nil, fmt.Errorf("repository.SQLite, scan infusion error: %w", err)
		}
		infusions = append(infusions, inf)
	}
	return infusions, rows.Err()
}

func (s *SQLite) Photos(ctx context.Context, tastingID int64, limit int) ([]string, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM photos WHERE tasting_id = ?`, tastingID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.SQLite, count photos error: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT file_id FROM photos WHERE tasting_id = ? ORDER BY id LIMIT ?`, tastingID, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.SQLite, get photos error: %w", err)
	}
	defer rows.Close()

	var fileIDs []string
	for rows.Next() {
		var fileID string
		if err = rows.Scan(&fileID); err != nil {
			return nil, 0, fmt.Errorf("repository.SQLite, scan photo error: %w", err)
		}
		fileIDs = append(fileIDs, fileID)
	}
	return fileIDs, total, rows.Err()
}

func (s *SQLite) UpdateTasting(ctx context.Context, userID, id int64, column string, value any) error {
	if err := checkColumn(column); err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE tastings SET %s = ? WHERE id = ? AND user_id = ?`, column)
	res, err := s.db.ExecContext(ctx, query, value, id, userID)
	if err != nil {
		return fmt.Errorf("repository.SQLite, update tasting error: %w", err)
	}
	return affectedOne(res)
}

func (s *SQLite) DeleteTasting(ctx context.Context, userID, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository.SQLite, begin error: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM tastings WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("repository.SQLite, delete tasting error: %w", err)
	}
	if err = affectedOne(res); err != nil {
		return err
	}
	for _, table := range []string{"infusions", "photos"} {
		if _, err = tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE tasting_id = ?`, id); err != nil {
			return fmt.Errorf("repository.SQLite, delete %s error: %w", table, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("repository.SQLite, commit error: %w", err)
	}
	return nil
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository.SQLite, rows affected error: %w", err)
	}
	if n != 1 {
		return TastingNotFoundErr
	}
	return nil
}

func (s *SQLite) CountTastings(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tastings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("repository.SQLite, count tastings error: %w", err)
	}
	return count, nil
}

func (s *SQLite) EnsureUser(ctx context.Context, id int64) (*model.User, error) {
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (id, created_at) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`,
		id, s.clock.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("repository.SQLite, create user error: %w", err)
	}
	var (
		user      = model.User{ID: id}
		createdAt int64
	)
	err = s.db.QueryRowContext(ctx, `SELECT created_at, tz_offset_min FROM users WHERE id = ?`, id).
		Scan(&createdAt, &user.TZOffsetMin)
	if err != nil {
		return nil, fmt.Errorf("repository.SQLite, get user error: %w", err)
	}
	user.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &user, nil
}

func (s *SQLite) SetUserTZ(ctx context.Context, id int64, offsetMin int) error {
	query := `INSERT INTO users (id, created_at, tz_offset_min) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET tz_offset_min = excluded.tz_offset_min`
	if _, err := s.db.ExecContext(ctx, query, id, s.clock.Now().Unix(), offsetMin); err != nil {
		return fmt.Errorf("repository.SQLite, set user tz error: %w", err)
	}
	return nil
}

func (s *SQLite) AddEvent(ctx context.Context, e *model.Event) error {
	props, err := json.Marshal(eventProps(e))
	if err != nil {
		return fmt.Errorf("repository.SQLite, marshal props error: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO bot_events (ts, user_id, chat_id, event, props) VALUES (?, ?, ?, ?, ?)`,
		e.TS.Unix(), e.UserID, e.ChatID, e.Event, string(props))
	if err != nil {
		return fmt.Errorf("repository.SQLite, add event error: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("repository.SQLite, event id error: %w", err)
	}
	return nil
}

func (s *SQLite) EventStats(ctx context.Context, from, to time.Time) (*model.DayStats, error) {
	var stats model.DayStats
	err := s.db.QueryRowContext(ctx, eventStatsQuery("?1", "?2", "?3", "?4"), from.Unix(), to.Unix(),
		model.EventNewTastingStarted, model.EventTastingSaved).Scan(&stats.DAU, &stats.Started, &stats.Saved)
	if err != nil {
		return nil, fmt.Errorf("repository.SQLite, event stats error: %w", err)
	}
	return &stats, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) CurrentDatabase(_ context.Context) (string, error) {
	return s.path, nil
}
