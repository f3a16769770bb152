package logs

import (
	"context"
	"time"

	"lifeos/internal/server/models"
)

// FindOptions controls paging of Find. Limit < 0 disables paging entirely;
// the keyword-search path relies on that to fetch the full candidate set.
type FindOptions struct {
	Limit  int
	Offset int
}

// NoPaging fetches every matching row.
var NoPaging = FindOptions{Limit: -1}

// Repository persists log entries. Every operation is scoped to a single
// owner; an id that exists but belongs to another user behaves exactly like a
// missing id.
type Repository interface {
	// Insert stores a new entry (content already encrypted) and fills in the
	// store-managed audit timestamps.
	Insert(ctx context.Context, entry *models.LogEntry) error

	// Find returns entries for userID matching the structured parts of
	// filter (Search is ignored here), newest log_date first, ties broken by
	// newest created_at.
	Find(ctx context.Context, userID string, filter models.LogFilter, opts FindOptions) ([]*models.LogEntry, error)

	// Update applies updates to the entry matching (id, userID) and returns
	// the updated row, or nil when nothing matched.
	Update(ctx context.Context, userID, id string, updates UpdateFields) (*models.LogEntry, error)

	// Delete removes the entry matching (id, userID) and returns the deleted
	// row, or nil when nothing matched.
	Delete(ctx context.Context, userID, id string) (*models.LogEntry, error)

	// CountByStatus groups the user's entries by status.
	CountByStatus(ctx context.Context, userID string) ([]models.StatusCount, error)

	// SearchPlain regex-matches query (case-insensitive) against the
	// plaintext fields system_feedback, status, category and type, never
	// against content. Results are capped at limit rows, newest first.
	SearchPlain(ctx context.Context, userID, query string, limit int) ([]*models.LogEntry, error)
}

// UpdateFields lists the mutable columns. Nil pointers are left untouched.
// Content must already be encrypted by the caller.
type UpdateFields struct {
	Content  *string
	Category *string
	Type     *string
	Status   *models.LogStatus
	Weather  *string
	Mood     *string
	Icon     *string
	Energy   *int
	LogDate  *time.Time
}
