package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chucky-1/teadiary/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type Postgres struct {
	conn *pgxpool.Pool
}

func NewPostgres(conn *pgxpool.Pool) *Postgres {
	return &Postgres{
		conn: conn,
	}
}

// ConnectPostgres opens a pool and checks it with a ping.
func ConnectPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("repository.Postgres, parse database url error: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("repository.Postgres, create pool error: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repository.Postgres, ping error: %w", err)
	}
	return pool, nil
}

func (p *Postgres) Close() {
	p.conn.Close()
}

func (p *Postgres) CreateTasting(ctx context.Context, t *model.Tasting, infusions []model.Infusion, photoIDs []string) error {
	tx, err := p.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository.Postgres, begin error: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// the users row lock serializes seq_no allocation per user
	if _, err = tx.Exec(ctx, `INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, t.UserID); err != nil {
		return fmt.Errorf("repository.Postgres, ensure user error: %w", err)
	}
	if _, err = tx.Exec(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, t.UserID); err != nil {
		return fmt.Errorf("repository.Postgres, lock user error: %w", err)
	}
	err = tx.QueryRow(ctx, `SELECT COALESCE(MAX(seq_no), 0) + 1 FROM tastings WHERE user_id = $1`, t.UserID).Scan(&t.SeqNo)
	if err != nil {
		return fmt.Errorf("repository.Postgres, next seq error: %w", err)
	}

	query := `INSERT INTO tastings (user_id, seq_no, name, year, region, category, grams, temp_c, tasted_at, gear,
		aroma_dry, aroma_warmed, aroma_after, effects_csv, scenarios_csv, rating, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at`
	err = tx.QueryRow(ctx, query, t.UserID, t.SeqNo, t.Name, t.Year, t.Region, t.Category, t.Grams, t.TempC, t.TastedAt,
		t.Gear, t.AromaDry, t.AromaWarmed, t.AromaAfter, t.EffectsCSV, t.ScenariosCSV, t.Rating, t.Summary).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return DuplicateSeqErr
		}
		return fmt.Errorf("repository.Postgres, create tasting error: %w", err)
	}

	for i := range infusions {
		inf := &infusions[i]
		inf.TastingID = t.ID
		err = tx.QueryRow(ctx, `INSERT INTO infusions (tasting_id, n, seconds, liquor_color, taste, special_notes, body, aftertaste)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
			t.ID, inf.N, inf.Seconds, inf.LiquorColor, inf.Taste, inf.SpecialNotes, inf.Body, inf.Aftertaste).Scan(&inf.ID)
		if err != nil {
			return fmt.Errorf("repository.Postgres, create infusion error: %w", err)
		}
	}
	for _, fileID := range photoIDs {
		if _, err = tx.Exec(ctx, `INSERT INTO photos (tasting_id, file_id) VALUES ($1, $2)`, t.ID, fileID); err != nil {
			return fmt.Errorf("repository.Postgres, create photo error: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository.Postgres, commit error: %w", err)
	}
	return nil
}

func (p *Postgres) GetTasting(ctx context.Context, userID, id int64) (*model.Tasting, error) {
	query := `SELECT ` + tastingColumns + ` FROM tastings WHERE id = $1 AND user_id = $2`
	return p.getTasting(ctx, query, id, userID)
}

func (p *Postgres) GetTastingBySeq(ctx context.Context, userID int64, seqNo int) (*model.Tasting, error) {
	query := `SELECT ` + tastingColumns + ` FROM tastings WHERE user_id = $1 AND seq_no = $2`
	return p.getTasting(ctx, query, userID, seqNo)
}

func (p *Postgres) getTasting(ctx context.Context, query string, args ...any) (*model.Tasting, error) {
	var t model.Tasting
	err := scanTasting(p.conn.QueryRow(ctx, query, args...), &t, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, TastingNotFoundErr
	} else if err != nil {
		return nil, fmt.Errorf("repository.Postgres, get tasting error: %w", err)
	}
	return &t, nil
}

func (p *Postgres) FindTastings(ctx context.Context, filter model.Filter, beforeID int64, limit int) ([]model.Tasting, error) {
	where := []string{"user_id = $1"}
	args := []any{filter.UserID}
	add := func(cond string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if beforeID > 0 {
		add("id < $%d", beforeID)
	}
	if filter.Name != "" {
		add("name ILIKE $%d", "%"+escapeLike(filter.Name)+"%")
	}
	if filter.Category != "" {
		add("category ILIKE $%d", escapeLike(filter.Category))
	}
	if filter.Year != nil {
		add("year = $%d", *filter.Year)
	}
	if filter.MinRating != nil {
		add("rating >= $%d", *filter.MinRating)
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT %s FROM tastings WHERE %s ORDER BY id DESC LIMIT $%d`,
		tastingColumns, strings.Join(where, " AND "), len(args))

	rows, err := p.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository.Postgres, find tastings error: %w", err)
	}
	defer rows.Close()

	var tastings []model.Tasting
	for rows.Next() {
		var t model.Tasting
		if err = scanTasting(rows, &t, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository.Postgres, scan tasting error: %w", err)
		}
		tastings = append(tastings, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.Postgres, find tastings error: %w", err)
	}
	return tastings, nil
}

func (p *Postgres) Infusions(ctx context.Context, tastingID int64) ([]model.Infusion, error) {
	query := `SELECT id, tasting_id, n, seconds, liquor_color, taste, special_notes, body, aftertaste
		FROM infusions WHERE tasting_id = $1 ORDER BY n`
	rows, err := p.conn.Query(ctx, query, tastingID)
	if err != nil {
		return nil, fmt.Errorf("repository.Postgres, get infusions error: %w", err)
	}
	defer rows.Close()

	var infusions []model.Infusion
	for rows.Next() {
		var inf model.Infusion
		err = rows.Scan(&inf.ID, &inf.TastingID, &inf.N, &inf.Seconds, &inf.LiquorColor, &inf.Taste,
			&inf.SpecialNotes, &inf.Body, &inf.Aftertaste)
		if err != nil {
			return nil, fmt.Errorf("repository.Postgres, scan infusion error: %w", err)
		}
		infusions = append(infusions, inf)
	}
	return infusions, rows.Err()
}

func (p *Postgres) Photos(ctx context.Context, tastingID int64, limit int) ([]string, int, error) {
	var total int
	if err := p.conn.QueryRow(ctx, `SELECT COUNT(*) FROM photos WHERE tasting_id = $1`, tastingID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.Postgres, count photos error: %w", err)
	}
	rows, err := p.conn.Query(ctx, `SELECT file_id FROM photos WHERE tasting_id = $1 ORDER BY id LIMIT $2`, tastingID, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.Postgres, get photos error: %w", err)
	}
	defer rows.Close()

	var fileIDs []string
	for rows.Next() {
		var fileID string
		if err = rows.Scan(&fileID); err != nil {
			return nil, 0, fmt.Errorf("repository.Postgres, scan photo error: %w", err)
		}
		fileIDs = append(fileIDs, fileID)
	}
	return fileIDs, total, rows.Err()
}

func (p *Postgres) UpdateTasting(ctx context.Context, userID, id int64, column string, value any) error {
	if err := checkColumn(column); err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE tastings SET %s = $1 WHERE id = $2 AND user_id = $3`, column)
	commandTag, err := p.conn.Exec(ctx, query, value, id, userID)
	if err != nil {
		return fmt.Errorf("repository.Postgres, update tasting error: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return TastingNotFoundErr
	}
	return nil
}

func (p *Postgres) DeleteTasting(ctx context.Context, userID, id int64) error {
	commandTag, err := p.conn.Exec(ctx, `DELETE FROM tastings WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("repository.Postgres, delete tasting error: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return TastingNotFoundErr
	}
	return nil
}

func (p *Postgres) CountTastings(ctx context.Context) (int64, error) {
	var count int64
	if err := p.conn.QueryRow(ctx, `SELECT COUNT(*) FROM tastings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("repository.Postgres, count tastings error: %w", err)
	}
	return count, nil
}

func (p *Postgres) EnsureUser(ctx context.Context, id int64) (*model.User, error) {
	if _, err := p.conn.Exec(ctx, `INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, id); err != nil {
		return nil, fmt.Errorf("repository.Postgres, create user error: %w", err)
	}
	user := model.User{ID: id}
	err := p.conn.QueryRow(ctx, `SELECT created_at, tz_offset_min FROM users WHERE id = $1`, id).
		Scan(&user.CreatedAt, &user.TZOffsetMin)
	if err != nil {
		return nil, fmt.Errorf("repository.Postgres, get user error: %w", err)
	}
	return &user, nil
}

func (p *Postgres) SetUserTZ(ctx context.Context, id int64, offsetMin int) error {
	query := `INSERT INTO users (id, tz_offset_min) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET tz_offset_min = EXCLUDED.tz_offset_min`
	if _, err := p.conn.Exec(ctx, query, id, offsetMin); err != nil {
		return fmt.Errorf("repository.Postgres, set user tz error: %w", err)
	}
	return nil
}

func (p *Postgres) AddEvent(ctx context.Context, e *model.Event) error {
	props, err := json.Marshal(eventProps(e))
	if err != nil {
		return fmt.Errorf("repository.Postgres, marshal props error: %w", err)
	}
	query := `INSERT INTO bot_events (ts, user_id, chat_id, event, props) VALUES ($1, $2, $3, $4, $5::jsonb) RETURNING id`
	err = p.conn.QueryRow(ctx, query, e.TS, e.UserID, e.ChatID, e.Event, string(props)).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("repository.Postgres, add event error: %w", err)
	}
	return nil
}

func (p *Postgres) EventStats(ctx context.Context, from, to time.Time) (*model.DayStats, error) {
	var stats model.DayStats
	err := p.conn.QueryRow(ctx, eventStatsQuery("$1", "$2", "$3", "$4"), from, to,
		model.EventNewTastingStarted, model.EventTastingSaved).Scan(&stats.DAU, &stats.Started, &stats.Saved)
	if err != nil {
		return nil, fmt.Errorf("repository.Postgres, event stats error: %w", err)
	}
	return &stats, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.conn.Ping(ctx)
}

func (p *Postgres) CurrentDatabase(ctx context.Context) (string, error) {
	var name string
	if err := p.conn.QueryRow(ctx, `SELECT current_database()`).Scan(&name); err != nil {
		return "", fmt.Errorf("repository.Postgres, current database error: %w", err)
	}
	return name, nil
}

func eventStatsQuery(from, to, started, saved string) string {
	return fmt.Sprintf(`SELECT COUNT(DISTINCT user_id),
		COALESCE(SUM(CASE WHEN event = %[3]s THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN event = %[4]s THEN 1 ELSE 0 END), 0)
		FROM bot_events WHERE ts >= %[1]s AND ts < %[2]s`, from, to, started, saved)
}

func eventProps(e *model.Event) map[string]any {
	if e.Props == nil {
		return map[string]any{}
	}
	return e.Props
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
