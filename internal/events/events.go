// Package events defines the payloads published through the outbox.
package events

import (
	"time"

	"example.com/wellness/internal/domain"
)

// ActivityLogged is emitted for every activity record that reaches the store,
// whether logged manually or reconciled from a device batch.
type ActivityLogged struct {
	ActivityID   int64     `json:"activity_id"`
	UserID       string    `json:"user_id"`
	Date         string    `json:"date"`
	ActivityType string    `json:"activity_type"`
	Value        float64   `json:"value"`
	Unit         string    `json:"unit"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
}

// Activity record sources carried in ActivityLogged.
const (
	SourceManual = "manual"
	SourceDevice = "device"
)

// DeviceSynced is emitted once per committed device batch.
type DeviceSynced struct {
	CheckpointID int64     `json:"checkpoint_id"`
	UserID       string    `json:"user_id"`
	SyncDate     string    `json:"sync_date"`
	RecordCount  int       `json:"record_count"`
	SyncedAt     time.Time `json:"synced_at"`
}

// SyncRequested is the consumer-side payload asking the service to commit a
// device batch that arrived over Kafka instead of HTTP.
type SyncRequested struct {
	UserID  string                `json:"user_id"`
	Records []domain.DeviceRecord `json:"records"`
}
