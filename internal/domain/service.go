// Package domain defines the business logic for the wellness service.
package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// QueryFilter bounds an activity query. Nil bounds are open; a zero Type
// matches every type.
type QueryFilter struct {
	Start *time.Time
	End   *time.Time
	Type  ActivityType
}

// ActivityStore captures the persistence operations the service requires.
// Implementations order query results by date descending, ties broken by
// store-assigned id ascending.
type ActivityStore interface {
	Insert(ctx context.Context, rec ActivityRecord) (ActivityRecord, error)
	Query(ctx context.Context, userID string, filter QueryFilter) ([]ActivityRecord, error)
	// CommitSyncBatch inserts every record plus one sync checkpoint for
	// userID in a single transaction; on failure nothing is written.
	CommitSyncBatch(ctx context.Context, userID string, recs []ActivityRecord) ([]ActivityRecord, SyncCheckpoint, error)
	// LatestSyncCheckpoint returns nil when the user has never synced.
	LatestSyncCheckpoint(ctx context.Context, userID string) (*SyncCheckpoint, error)
}

// Service orchestrates activity logging, summaries, and device sync.
type Service struct {
	store ActivityStore
	now   func() time.Time
}

// NewService constructs a Service.
func NewService(store ActivityStore) *Service {
	return &Service{store: store, now: time.Now}
}

// LogActivity validates and stores one manually logged activity dated today.
func (s *Service) LogActivity(ctx context.Context, userID, activityType string, value float64, unit string) (ActivityRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return ActivityRecord{}, fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	typ := ActivityType(activityType)
	if !typ.Valid() {
		return ActivityRecord{}, fmt.Errorf("%w: unknown activity type %q", ErrValidation, activityType)
	}
	if value < 0 {
		return ActivityRecord{}, fmt.Errorf("%w: value must be >= 0", ErrValidation)
	}
	if strings.TrimSpace(unit) == "" {
		return ActivityRecord{}, fmt.Errorf("%w: unit is required", ErrValidation)
	}

	return s.store.Insert(ctx, ActivityRecord{
		UserID: userID,
		Date:   truncateToDate(s.now()),
		Type:   typ,
		Value:  value,
		Unit:   unit,
	})
}

// GetUserActivities returns the user's records newest-first. Date filters
// arrive as strings and are parsed here; typed dates flow below this point.
func (s *Service) GetUserActivities(ctx context.Context, userID, startDate, endDate, activityType string) ([]ActivityRecord, error) {
	var filter QueryFilter
	if startDate != "" {
		start, err := parseDate(startDate)
		if err != nil {
			return nil, err
		}
		filter.Start = &start
	}
	if endDate != "" {
		end, err := parseDate(endDate)
		if err != nil {
			return nil, err
		}
		filter.End = &end
	}
	filter.Type = ActivityType(activityType)

	return s.store.Query(ctx, userID, filter)
}

// GetSyncStatus returns the most recent sync checkpoint for the user, or
// nil when no sync has ever run. The nil result is a defined empty state,
// not an error; the API layer maps it to 404.
func (s *Service) GetSyncStatus(ctx context.Context, userID string) (*SyncCheckpoint, error) {
	return s.store.LatestSyncCheckpoint(ctx, userID)
}
