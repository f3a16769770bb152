package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lifeos/internal/common"
	"lifeos/internal/server/models"
	"lifeos/internal/server/services"
)

// createLogPayload is the wire shape of POST /api/logs.
type createLogPayload struct {
	Content  string           `json:"content"`
	Category string           `json:"category"`
	Type     string           `json:"type"`
	Status   models.LogStatus `json:"status"`
	Weather  *string          `json:"weather"`
	Mood     *string          `json:"mood"`
	Icon     *string          `json:"icon"`
	Energy   *int             `json:"energy"`
	LogDate  *time.Time       `json:"logDate"`
}

// updateLogPayload is the wire shape of PUT /api/logs/{id}; absent fields
// stay untouched.
type updateLogPayload struct {
	Content  *string           `json:"content"`
	Category *string           `json:"category"`
	Type     *string           `json:"type"`
	Status   *models.LogStatus `json:"status"`
	Weather  *string           `json:"weather"`
	Mood     *string           `json:"mood"`
	Icon     *string           `json:"icon"`
	Energy   *int              `json:"energy"`
	LogDate  *time.Time        `json:"logDate"`
}

func (s *Server) handleCreateLog(w http.ResponseWriter, r *http.Request) {
	var payload createLogPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.logs.Create(r.Context(), userIDFromContext(r.Context()), services.CreateLogRequest{
		Content:  payload.Content,
		Category: payload.Category,
		Type:     payload.Type,
		Status:   payload.Status,
		Weather:  payload.Weather,
		Mood:     payload.Mood,
		Icon:     payload.Icon,
		Energy:   payload.Energy,
		LogDate:  payload.LogDate,
	})
	if err != nil {
		s.logger.Error(r.Context(), "create log failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create log")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(Response{Status: "success", Data: entry})
}

// parseListQuery maps query parameters onto the filter. Numbers that do not
// parse drop their filter rather than failing the request.
func parseListQuery(r *http.Request) (models.LogFilter, int, int) {
	q := r.URL.Query()

	filter := models.LogFilter{
		Category: q.Get("category"),
		Type:     q.Get("type"),
		Weather:  q.Get("weather"),
		Mood:     q.Get("mood"),
		Icon:     q.Get("icon"),
		Search:   q.Get("search"),
	}

	if raw := q.Get("energy_level"); raw != "" {
		if lvl, err := strconv.Atoi(raw); err == nil {
			filter.EnergyLevel = &lvl
			filter.EnergyOp = models.EnergyOp(q.Get("energy_op"))
		}
	}

	limit := services.DefaultLimit
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	offset := 0
	if raw := q.Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}

	return filter, limit, offset
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	filter, limit, offset := parseListQuery(r)

	entries, err := s.logs.List(r.Context(), userIDFromContext(r.Context()), filter, limit, offset)
	if err != nil {
		s.logger.Error(r.Context(), "list logs failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list logs")
		return
	}
	if entries == nil {
		entries = []*models.LogEntry{}
	}
	writeSuccess(w, entries)
}

func (s *Server) handleUpdateLog(w http.ResponseWriter, r *http.Request) {
	var payload updateLogPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.logs.Update(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "id"), services.UpdateLogRequest{
		Content:  payload.Content,
		Category: payload.Category,
		Type:     payload.Type,
		Status:   payload.Status,
		Weather:  payload.Weather,
		Mood:     payload.Mood,
		Icon:     payload.Icon,
		Energy:   payload.Energy,
		LogDate:  payload.LogDate,
	})
	if err != nil {
		s.logger.Error(r.Context(), "update log failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update log")
		return
	}
	if entry == nil {
		writeFail(w, http.StatusNotFound, map[string]string{"id": "log not found"})
		return
	}
	writeSuccess(w, entry)
}

func (s *Server) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	entry, err := s.logs.Delete(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.logger.Error(r.Context(), "delete log failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete log")
		return
	}
	if entry == nil {
		writeFail(w, http.StatusNotFound, map[string]string{"id": "log not found"})
		return
	}
	writeSuccess(w, entry)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.logs.Stats(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.logger.Error(r.Context(), "stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	if stats == nil {
		stats = []models.StatusCount{}
	}
	writeSuccess(w, stats)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeFail(w, http.StatusBadRequest, map[string]string{"q": "query is required"})
		return
	}

	entries, err := s.logs.Search(r.Context(), userIDFromContext(r.Context()), query)
	if err != nil {
		s.logger.Error(r.Context(), "search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if entries == nil {
		entries = []*models.LogEntry{}
	}
	writeSuccess(w, entries)
}

func (s *Server) handleArchiveUploadURL(w http.ResponseWriter, r *http.Request) {
	key, url, err := s.archive.PresignUpload(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.logger.Error(r.Context(), "presign upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to presign upload")
		return
	}
	writeSuccess(w, map[string]string{"key": key, "url": url})
}

func (s *Server) handleArchiveDownloadURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeFail(w, http.StatusBadRequest, map[string]string{"key": "key is required"})
		return
	}

	url, err := s.archive.PresignDownload(r.Context(), userIDFromContext(r.Context()), key)
	if errors.Is(err, common.ErrUnauthorized) {
		// a key outside the caller's prefix looks exactly like a missing one
		writeFail(w, http.StatusNotFound, map[string]string{"key": "archive not found"})
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "presign download failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to presign download")
		return
	}
	writeSuccess(w, map[string]string{"url": url})
}
