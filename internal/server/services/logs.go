// Package services holds the business logic between the HTTP layer and the
// repositories: reward computation, feedback generation, content encryption
// and the keyword-search engine.
package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"lifeos/internal/cryptox"
	"lifeos/internal/server/models"
	"lifeos/internal/server/repositories/logs"
)

const (
	DefaultCategory = "SYSTEM"
	DefaultType     = "INFO"

	// DefaultLimit is the page size when the caller does not ask for one.
	DefaultLimit = 20

	// plainSearchCap bounds the plaintext-field search results.
	plainSearchCap = 50
)

// LogService owns log entry lifecycle and querying. The codec is constructed
// once at startup and injected; it never changes for the process lifetime.
type LogService struct {
	repo  logs.Repository
	codec *cryptox.Codec
}

func NewLogService(repo logs.Repository, codec *cryptox.Codec) *LogService {
	return &LogService{repo: repo, codec: codec}
}

// CreateLogRequest carries the caller-supplied fields of a new entry.
// Optional metadata left nil is lifted from the content when the content
// parses as JSON with an embedded metadata object.
type CreateLogRequest struct {
	Content  string
	Category string
	Type     string
	Status   models.LogStatus
	Weather  *string
	Mood     *string
	Icon     *string
	Energy   *int
	LogDate  *time.Time
}

// UpdateLogRequest lists the mutable fields; nil means "leave unchanged".
// Reward and feedback are never recomputed on update.
type UpdateLogRequest struct {
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

// Create persists a new entry for userID. The content is encrypted before it
// is written; the returned record carries the content as persisted, i.e.
// still encrypted. ExpGranted and SystemFeedback are fixed here, once.
func (s *LogService) Create(ctx context.Context, userID string, req CreateLogRequest) (*models.LogEntry, error) {
	category := req.Category
	if category == "" {
		category = DefaultCategory
	}
	logType := req.Type
	if logType == "" {
		logType = DefaultType
	}
	status := req.Status
	if !models.ValidStatus(status) {
		status = models.StatusUnknown
	}
	logDate := time.Now()
	if req.LogDate != nil {
		logDate = *req.LogDate
	}

	entry := &models.LogEntry{
		ID:             uuid.NewString(),
		UserID:         userID,
		Category:       category,
		Type:           logType,
		Status:         status,
		SystemFeedback: GenerateFeedback(category, logType, req.Content),
		ExpGranted:     computeExp(req.Content, status, logType),
		Weather:        req.Weather,
		Mood:           req.Mood,
		Icon:           req.Icon,
		Energy:         req.Energy,
		LogDate:        logDate,
	}

	// When the caller supplied no metadata at all, try to lift it from a
	// structured content payload. Anything unparseable is just opaque text.
	if req.Weather == nil && req.Mood == nil && req.Icon == nil && req.Energy == nil {
		meta := liftContentMetadata(req.Content)
		entry.Weather = meta.Weather
		entry.Mood = meta.Mood
		entry.Icon = meta.Icon
		entry.Energy = meta.Energy
	}

	encrypted, err := s.codec.Encrypt(req.Content)
	if err != nil {
		return nil, err
	}
	entry.Content = encrypted

	if err := s.repo.Insert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns decrypted entries for userID, newest log_date first, ties by
// newest created_at.
//
// Structured filters are pushed to the store. A keyword (filter.Search)
// cannot be: the content column is ciphertext the store cannot match. In
// that case the FULL candidate set is fetched, each record is decrypted,
// matched in memory, and only then paginated. Paginating before the keyword
// test would silently drop untested rows, so the order here is load-bearing.
// The cost is O(all candidate rows) per call; that is the accepted price of
// searchable content without an encrypted-search index.
func (s *LogService) List(ctx context.Context, userID string, filter models.LogFilter, limit, offset int) ([]*models.LogEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	if filter.Search == "" {
		entries, err := s.repo.Find(ctx, userID, filter, logs.FindOptions{Limit: limit, Offset: offset})
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			s.decryptForDisplay(e)
		}
		return entries, nil
	}

	candidates, err := s.repo.Find(ctx, userID, filter, logs.NoPaging)
	if err != nil {
		return nil, err
	}

	keyword := strings.ToLower(filter.Search)
	matched := make([]*models.LogEntry, 0, len(candidates))
	for _, e := range candidates {
		// A legacy row stored before encryption is already plaintext and
		// stays searchable. Only wire-shaped content that fails to decrypt
		// is opaque to the keyword.
		plaintext, ok := s.codec.Decrypt(e.Content)
		searchable := ""
		if ok || !cryptox.IsEncrypted(e.Content) {
			e.Content = plaintext
			searchable = plaintext
		}
		if matchesKeyword(e, searchable, keyword) {
			matched = append(matched, e)
		}
	}

	// pagination over the filtered set, never before it
	if offset >= len(matched) {
		return []*models.LogEntry{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

// matchesKeyword reports whether keyword occurs (case-insensitively) in the
// searchable content or any plaintext metadata field. Wire-shaped content
// that failed to decrypt contributes an empty searchable string, so its
// ciphertext never accidentally matches.
func matchesKeyword(e *models.LogEntry, searchable, keyword string) bool {
	fields := []string{searchable, e.SystemFeedback, e.Category, e.Type}
	if e.Weather != nil {
		fields = append(fields, *e.Weather)
	}
	if e.Mood != nil {
		fields = append(fields, *e.Mood)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), keyword) {
			return true
		}
	}
	return false
}

// Update mutates content and metadata of the entry matching (id, userID).
// Content, when present, is re-encrypted. A non-matching id or owner yields
// (nil, nil). The returned record carries the content as persisted.
func (s *LogService) Update(ctx context.Context, userID, id string, req UpdateLogRequest) (*models.LogEntry, error) {
	fields := logs.UpdateFields{
		Category: req.Category,
		Type:     req.Type,
		Status:   req.Status,
		Weather:  req.Weather,
		Mood:     req.Mood,
		Icon:     req.Icon,
		Energy:   req.Energy,
		LogDate:  req.LogDate,
	}
	if req.Content != nil {
		encrypted, err := s.codec.Encrypt(*req.Content)
		if err != nil {
			return nil, err
		}
		fields.Content = &encrypted
	}
	return s.repo.Update(ctx, userID, id, fields)
}

// Delete removes the entry matching (id, userID); (nil, nil) when nothing
// matched.
func (s *LogService) Delete(ctx context.Context, userID, id string) (*models.LogEntry, error) {
	return s.repo.Delete(ctx, userID, id)
}

// Stats groups the user's entries by status. Status is plaintext, so no
// decryption is involved.
func (s *LogService) Stats(ctx context.Context, userID string) ([]models.StatusCount, error) {
	return s.repo.CountByStatus(ctx, userID)
}

// Search is the cheap alternative to the keyword path of List: a regex match
// against plaintext fields only, capped at 50 rows. Content is decrypted
// purely for display and is never part of the match.
func (s *LogService) Search(ctx context.Context, userID, query string) ([]*models.LogEntry, error) {
	entries, err := s.repo.SearchPlain(ctx, userID, query, plainSearchCap)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		s.decryptForDisplay(e)
	}
	return entries, nil
}

// decryptForDisplay swaps ciphertext for plaintext in place. A record that
// fails to decrypt keeps its stored value: it is still listed, just garbled,
// rather than breaking the whole result.
func (s *LogService) decryptForDisplay(e *models.LogEntry) {
	if plaintext, ok := s.codec.Decrypt(e.Content); ok {
		e.Content = plaintext
	}
}

// computeExp is the write-once reward: base 10, +20 for content longer than
// 50 characters, +15 for a struggling status, +10 for error-ish types.
func computeExp(content string, status models.LogStatus, logType string) int {
	exp := 10
	if utf8.RuneCountInString(content) > 50 {
		exp += 20
	}
	if status == models.StatusDegraded || status == models.StatusOverloaded {
		exp += 15
	}
	if logType == "ERROR" || logType == "CRITICAL" {
		exp += 10
	}
	return exp
}

// contentMetadata is the shape optionally embedded in structured content.
type contentMetadata struct {
	Weather *string `json:"weather"`
	Mood    *string `json:"mood"`
	Icon    *string `json:"icon"`
	Energy  *int    `json:"energy"`
}

// liftContentMetadata parses content as JSON and extracts its metadata
// sub-object. Parse failures are swallowed: most content is free text.
func liftContentMetadata(content string) contentMetadata {
	var payload struct {
		Metadata contentMetadata `json:"metadata"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return contentMetadata{}
	}
	return payload.Metadata
}
