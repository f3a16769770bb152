package services

import (
	"context"
	"regexp"
	"sort"
	"time"

	"lifeos/internal/server/models"
	"lifeos/internal/server/repositories/logs"
)

// fakeLogRepo is an in-memory logs.Repository with the same visible
// semantics as the Postgres implementation: owner scoping, structured
// filtering, newest-first ordering, nil results for misses.
type fakeLogRepo struct {
	entries []*models.LogEntry
	clock   time.Time
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeLogRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeLogRepo) Insert(_ context.Context, entry *models.LogEntry) error {
	now := f.tick()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	stored := *entry
	f.entries = append(f.entries, &stored)
	return nil
}

func (f *fakeLogRepo) Find(_ context.Context, userID string, filter models.LogFilter, opts logs.FindOptions) ([]*models.LogEntry, error) {
	var result []*models.LogEntry
	for _, e := range f.entries {
		if e.UserID != userID {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		if filter.Weather != "" && (e.Weather == nil || *e.Weather != filter.Weather) {
			continue
		}
		if filter.Mood != "" && (e.Mood == nil || *e.Mood != filter.Mood) {
			continue
		}
		if filter.Icon != "" && (e.Icon == nil || *e.Icon != filter.Icon) {
			continue
		}
		if filter.HasEnergy() {
			if e.Energy == nil {
				continue
			}
			switch filter.EnergyOp {
			case models.EnergyGTE:
				if *e.Energy < *filter.EnergyLevel {
					continue
				}
			case models.EnergyLTE:
				if *e.Energy > *filter.EnergyLevel {
					continue
				}
			case models.EnergyEQ:
				if *e.Energy != *filter.EnergyLevel {
					continue
				}
			}
		}
		copied := *e
		result = append(result, &copied)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].LogDate.Equal(result[j].LogDate) {
			return result[i].LogDate.After(result[j].LogDate)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if opts.Limit >= 0 {
		if opts.Offset >= len(result) {
			return nil, nil
		}
		end := opts.Offset + opts.Limit
		if end > len(result) {
			end = len(result)
		}
		result = result[opts.Offset:end]
	}
	return result, nil
}

func (f *fakeLogRepo) Update(_ context.Context, userID, id string, updates logs.UpdateFields) (*models.LogEntry, error) {
	for _, e := range f.entries {
		if e.ID != id || e.UserID != userID {
			continue
		}
		if updates.Content != nil {
			e.Content = *updates.Content
		}
		if updates.Category != nil {
			e.Category = *updates.Category
		}
		if updates.Type != nil {
			e.Type = *updates.Type
		}
		if updates.Status != nil {
			e.Status = *updates.Status
		}
		if updates.Weather != nil {
			e.Weather = updates.Weather
		}
		if updates.Mood != nil {
			e.Mood = updates.Mood
		}
		if updates.Icon != nil {
			e.Icon = updates.Icon
		}
		if updates.Energy != nil {
			e.Energy = updates.Energy
		}
		if updates.LogDate != nil {
			e.LogDate = *updates.LogDate
		}
		e.UpdatedAt = f.tick()
		copied := *e
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeLogRepo) Delete(_ context.Context, userID, id string) (*models.LogEntry, error) {
	for i, e := range f.entries {
		if e.ID == id && e.UserID == userID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeLogRepo) CountByStatus(_ context.Context, userID string) ([]models.StatusCount, error) {
	counts := map[models.LogStatus]int{}
	for _, e := range f.entries {
		if e.UserID == userID {
			counts[e.Status]++
		}
	}
	var result []models.StatusCount
	for status, n := range counts {
		result = append(result, models.StatusCount{Status: status, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Status < result[j].Status })
	return result, nil
}

func (f *fakeLogRepo) SearchPlain(_ context.Context, userID, query string, limit int) ([]*models.LogEntry, error) {
	re, err := regexp.Compile("(?i)" + query)
	if err != nil {
		return nil, err
	}
	var result []*models.LogEntry
	for _, e := range f.entries {
		if e.UserID != userID {
			continue
		}
		if re.MatchString(e.SystemFeedback) || re.MatchString(string(e.Status)) ||
			re.MatchString(e.Category) || re.MatchString(e.Type) {
			copied := *e
			result = append(result, &copied)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].LogDate.Equal(result[j].LogDate) {
			return result[i].LogDate.After(result[j].LogDate)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// stored returns the raw persisted row, bypassing the service.
func (f *fakeLogRepo) stored(id string) *models.LogEntry {
	for _, e := range f.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}
