package domain

import "time"

// DateOnly is the wire format for calendar dates throughout the service.
const DateOnly = "2006-01-02"

// ActivityType enumerates the wellness activities the service accepts.
type ActivityType string

const (
	ActivityMeditation ActivityType = "meditation"
	ActivityWorkout    ActivityType = "workout"
	ActivityHydration  ActivityType = "hydration"
	ActivitySleep      ActivityType = "sleep"
	ActivityRunning    ActivityType = "running"
	ActivityWalking    ActivityType = "walking"
)

var validActivityTypes = map[ActivityType]struct{}{
	ActivityMeditation: {},
	ActivityWorkout:    {},
	ActivityHydration:  {},
	ActivitySleep:      {},
	ActivityRunning:    {},
	ActivityWalking:    {},
}

// Valid reports whether the type is one of the fixed enum values.
func (t ActivityType) Valid() bool {
	_, ok := validActivityTypes[t]
	return ok
}

// ActivityRecord is the canonical wellness event stored in PostgreSQL.
// Records are immutable once inserted; ID and CreatedAt are assigned by
// the store.
type ActivityRecord struct {
	ID        int64
	UserID    string
	Date      time.Time
	Type      ActivityType
	Value     float64
	Unit      string
	CreatedAt time.Time
}

// SyncCheckpoint marks one completed device reconciliation for a user.
// Checkpoints are append-only; the current sync status is the row with the
// greatest LastSyncAt.
type SyncCheckpoint struct {
	ID         int64
	UserID     string
	SyncDate   time.Time
	LastSyncAt time.Time
}

// Period selects the aggregation window for a summary.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// SummaryEntry aggregates one activity type inside a window.
type SummaryEntry struct {
	TotalValue float64
	Unit       string
	Count      int
}

// Summary is the per-type aggregation of a user's records over a window.
// It is derived on demand and never persisted.
type Summary struct {
	UserID    string
	Period    Period
	StartDate string
	EndDate   string
	Entries   map[ActivityType]SummaryEntry
}

// truncateToDate drops the time-of-day component, keeping UTC calendar dates
// comparable with values scanned from DATE columns.
func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
