// Package logs provides the PostgreSQL-backed repository for journal
// entries. Structured filters are pushed into SQL; the encrypted content
// column is opaque to every query here.
package logs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"lifeos/internal/dbx"
	"lifeos/internal/server/models"
)

const logColumns = `id, user_id, content, category, type, status, system_feedback,
	exp_granted, weather, mood, icon, energy, log_date, created_at, updated_at`

// PostgresRepository implements Repository over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository binds a repository to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, entry *models.LogEntry) error {
	query := `
		INSERT INTO system_logs
			(id, user_id, content, category, type, status, system_feedback,
			 exp_granted, weather, mood, icon, energy, log_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		entry.ID, entry.UserID, entry.Content, entry.Category, entry.Type,
		entry.Status, entry.SystemFeedback, entry.ExpGranted,
		entry.Weather, entry.Mood, entry.Icon, entry.Energy, entry.LogDate,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, userID string, filter models.LogFilter, opts FindOptions) ([]*models.LogEntry, error) {
	var (
		conds = []string{"user_id = $1"}
		args  = []any{userID}
	)

	addEq := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	addEq("category", filter.Category)
	addEq("type", filter.Type)
	addEq("weather", filter.Weather)
	addEq("mood", filter.Mood)
	addEq("icon", filter.Icon)

	if filter.HasEnergy() {
		op := "="
		switch filter.EnergyOp {
		case models.EnergyGTE:
			op = ">=" // gt is inclusive on purpose
		case models.EnergyLTE:
			op = "<="
		}
		args = append(args, *filter.EnergyLevel)
		conds = append(conds, fmt.Sprintf("energy %s $%d", op, len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM system_logs WHERE %s ORDER BY log_date DESC, created_at DESC`,
		logColumns, strings.Join(conds, " AND "))

	if opts.Limit >= 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return r.queryEntries(ctx, query, args...)
}

func (r *PostgresRepository) Update(ctx context.Context, userID, id string, updates UpdateFields) (*models.LogEntry, error) {
	var (
		sets = []string{"updated_at = now()"}
		args []any
	)

	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if updates.Content != nil {
		add("content", *updates.Content)
	}
	if updates.Category != nil {
		add("category", *updates.Category)
	}
	if updates.Type != nil {
		add("type", *updates.Type)
	}
	if updates.Status != nil {
		add("status", *updates.Status)
	}
	if updates.Weather != nil {
		add("weather", *updates.Weather)
	}
	if updates.Mood != nil {
		add("mood", *updates.Mood)
	}
	if updates.Icon != nil {
		add("icon", *updates.Icon)
	}
	if updates.Energy != nil {
		add("energy", *updates.Energy)
	}
	if updates.LogDate != nil {
		add("log_date", *updates.LogDate)
	}

	args = append(args, id)
	idArg := len(args)
	args = append(args, userID)
	userArg := len(args)

	query := fmt.Sprintf(`UPDATE system_logs SET %s WHERE id = $%d AND user_id = $%d RETURNING %s`,
		strings.Join(sets, ", "), idArg, userArg, logColumns)

	entry, err := r.scanEntry(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update log: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) (*models.LogEntry, error) {
	query := fmt.Sprintf(`DELETE FROM system_logs WHERE id = $1 AND user_id = $2 RETURNING %s`, logColumns)

	entry, err := r.scanEntry(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete log: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context, userID string) ([]models.StatusCount, error) {
	query := `SELECT status, COUNT(*) FROM system_logs WHERE user_id = $1 GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	var result []models.StatusCount
	for rows.Next() {
		var sc models.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		result = append(result, sc)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) SearchPlain(ctx context.Context, userID, query string, limit int) ([]*models.LogEntry, error) {
	// Content is ciphertext here: a regex against it could never match the
	// plaintext keyword, so it is excluded from the match on purpose.
	q := fmt.Sprintf(`SELECT %s FROM system_logs
		WHERE user_id = $1
		  AND (system_feedback ~* $2 OR status ~* $2 OR category ~* $2 OR type ~* $2)
		ORDER BY log_date DESC, created_at DESC
		LIMIT $3`, logColumns)

	return r.queryEntries(ctx, q, userID, query, limit)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanEntry(row rowScanner) (*models.LogEntry, error) {
	var e models.LogEntry
	err := row.Scan(
		&e.ID, &e.UserID, &e.Content, &e.Category, &e.Type, &e.Status,
		&e.SystemFeedback, &e.ExpGranted, &e.Weather, &e.Mood, &e.Icon,
		&e.Energy, &e.LogDate, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PostgresRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*models.LogEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select logs: %w", err)
	}
	defer rows.Close()

	var result []*models.LogEntry
	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
