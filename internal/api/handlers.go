// Package api exposes HTTP handlers for the wellness service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"example.com/wellness/internal/domain"
)

// DeviceSource fetches raw activity batches from the device-data API.
type DeviceSource interface {
	FetchActivity(ctx context.Context, userID string) ([]domain.DeviceRecord, error)
}

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	devices DeviceSource
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, devices DeviceSource) *Handler {
	return &Handler{service: service, devices: devices}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/activities", h.activities)
	mux.HandleFunc("/v1/activities/", h.activitiesByUser)
	mux.HandleFunc("/v1/summaries/", h.summaryByUser)
	mux.HandleFunc("/v1/device-sync", h.syncDevice)
	mux.HandleFunc("/v1/device-sync/", h.syncStatus)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req LogActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	record, err := h.service.LogActivity(r.Context(), req.UserID, req.ActivityType, *req.Value, req.Unit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, LogActivityResponse{
		ActivityID: record.ID,
		Activity:   toActivityView(record),
	})
}

func (h *Handler) activitiesByUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	userID := strings.TrimPrefix(r.URL.Path, "/v1/activities/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing user id")
		return
	}

	records, err := h.service.GetUserActivities(r.Context(),
		userID,
		r.URL.Query().Get("start_date"),
		r.URL.Query().Get("end_date"),
		r.URL.Query().Get("activity_type"),
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views := make([]ActivityView, 0, len(records))
	for _, rec := range records {
		views = append(views, toActivityView(rec))
	}
	writeJSON(w, http.StatusOK, ListActivitiesResponse{UserID: userID, Activities: views})
}

func (h *Handler) summaryByUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	userID := strings.TrimPrefix(r.URL.Path, "/v1/summaries/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing user id")
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = string(domain.PeriodWeek)
	}

	summary, err := h.service.GetUserSummary(r.Context(), userID, period, r.URL.Query().Get("end_date"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	entries := make(map[string]SummaryEntryView, len(summary.Entries))
	for typ, entry := range summary.Entries {
		entries[string(typ)] = SummaryEntryView{
			TotalValue: entry.TotalValue,
			Unit:       entry.Unit,
			Count:      entry.Count,
		}
	}

	writeJSON(w, http.StatusOK, SummaryResponse{
		UserID:    summary.UserID,
		Period:    string(summary.Period),
		StartDate: summary.StartDate,
		EndDate:   summary.EndDate,
		Summary:   entries,
	})
}

func (h *Handler) syncDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req SyncDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "user_id is required")
		return
	}

	batch, err := h.devices.FetchActivity(r.Context(), req.UserID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "device_source_unavailable", err.Error())
		return
	}

	result, err := h.service.SyncDeviceData(r.Context(), req.UserID, batch)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SyncDeviceResponse{
		UserID:           req.UserID,
		SyncedActivities: result.Synced,
	})
}

func (h *Handler) syncStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/device-sync/")
	userID, ok := strings.CutSuffix(rest, "/status")
	if !ok || userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing user id")
		return
	}

	checkpoint, err := h.service.GetSyncStatus(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if checkpoint == nil {
		writeError(w, http.StatusNotFound, "not_found", "no sync records found")
		return
	}

	writeJSON(w, http.StatusOK, SyncStatusResponse{
		UserID:       userID,
		LastSyncDate: checkpoint.SyncDate.Format(domain.DateOnly),
		LastSyncAt:   checkpoint.LastSyncAt,
	})
}

// LogActivityRequest is the payload for POST /v1/activities.
type LogActivityRequest struct {
	UserID       string   `json:"user_id"`
	ActivityType string   `json:"activity_type"`
	Value        *float64 `json:"value"`
	Unit         string   `json:"unit"`
}

// Validate ensures required fields are present. Enum and range checks live
// in the domain layer.
func (r LogActivityRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(r.ActivityType) == "" {
		return errors.New("activity_type is required")
	}
	if r.Value == nil {
		return errors.New("value is required")
	}
	if strings.TrimSpace(r.Unit) == "" {
		return errors.New("unit is required")
	}
	return nil
}

// LogActivityResponse describes the response body for create.
type LogActivityResponse struct {
	ActivityID int64        `json:"activity_id"`
	Activity   ActivityView `json:"activity"`
}

// ActivityView exposes one stored record.
type ActivityView struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	Date         string    `json:"date"`
	ActivityType string    `json:"activity_type"`
	Value        float64   `json:"value"`
	Unit         string    `json:"unit"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListActivitiesResponse packages history results.
type ListActivitiesResponse struct {
	UserID     string         `json:"user_id"`
	Activities []ActivityView `json:"activities"`
}

// SummaryEntryView aggregates one activity type.
type SummaryEntryView struct {
	TotalValue float64 `json:"total_value"`
	Unit       string  `json:"unit"`
	Count      int     `json:"count"`
}

// SummaryResponse is the body for GET /v1/summaries/{user_id}.
type SummaryResponse struct {
	UserID    string                      `json:"user_id"`
	Period    string                      `json:"period"`
	StartDate string                      `json:"start_date"`
	EndDate   string                      `json:"end_date"`
	Summary   map[string]SummaryEntryView `json:"summary"`
}

// SyncDeviceRequest is the payload for POST /v1/device-sync.
type SyncDeviceRequest struct {
	UserID string `json:"user_id"`
}

// SyncDeviceResponse reports what a sync committed.
type SyncDeviceResponse struct {
	UserID           string                  `json:"user_id"`
	SyncedActivities []domain.SyncedActivity `json:"synced_activities"`
}

// SyncStatusResponse is the body for GET /v1/device-sync/{user_id}/status.
type SyncStatusResponse struct {
	UserID       string    `json:"user_id"`
	LastSyncDate string    `json:"last_sync_date"`
	LastSyncAt   time.Time `json:"last_sync_at"`
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrInvalidPeriod):
		writeError(w, http.StatusBadRequest, "invalid_period", err.Error())
	case errors.Is(err, domain.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
	case errors.Is(err, domain.ErrMalformedRecord):
		writeError(w, http.StatusBadRequest, "malformed_record", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toActivityView(rec domain.ActivityRecord) ActivityView {
	return ActivityView{
		ID:           rec.ID,
		UserID:       rec.UserID,
		Date:         rec.Date.Format(domain.DateOnly),
		ActivityType: string(rec.Type),
		Value:        rec.Value,
		Unit:         rec.Unit,
		CreatedAt:    rec.CreatedAt,
	}
}
