package domain

import (
	"context"
	"fmt"
)

// DeviceRecord is one untrusted row from a device batch. Pointer fields
// distinguish absent values from zero values.
type DeviceRecord struct {
	UserID       *string  `json:"user_id"`
	Date         *string  `json:"date"`
	ActivityType *string  `json:"activity_type"`
	Value        *float64 `json:"value"`
	Unit         *string  `json:"unit"`
}

// SyncedActivity is the per-record view returned after a successful sync.
type SyncedActivity struct {
	ActivityType ActivityType `json:"activity_type"`
	Value        float64      `json:"value"`
	Unit         string       `json:"unit"`
}

// SyncResult reports what a device sync committed.
type SyncResult struct {
	Synced     []SyncedActivity
	Checkpoint SyncCheckpoint
}

// SyncDeviceData reconciles a device batch into the store. Every entry must
// parse; one malformed entry aborts the whole batch with nothing written.
// An empty batch is accepted and still records a checkpoint. Batches are
// not deduplicated against stored data, so replaying a batch duplicates
// its records.
func (s *Service) SyncDeviceData(ctx context.Context, userID string, batch []DeviceRecord) (SyncResult, error) {
	records := make([]ActivityRecord, 0, len(batch))
	for i, raw := range batch {
		rec, err := raw.toActivityRecord()
		if err != nil {
			return SyncResult{}, fmt.Errorf("entry %d: %w", i, err)
		}
		records = append(records, rec)
	}

	stored, checkpoint, err := s.store.CommitSyncBatch(ctx, userID, records)
	if err != nil {
		return SyncResult{}, err
	}

	synced := make([]SyncedActivity, 0, len(stored))
	for _, rec := range stored {
		synced = append(synced, SyncedActivity{
			ActivityType: rec.Type,
			Value:        rec.Value,
			Unit:         rec.Unit,
		})
	}

	return SyncResult{Synced: synced, Checkpoint: checkpoint}, nil
}

func (r DeviceRecord) toActivityRecord() (ActivityRecord, error) {
	if r.UserID == nil || *r.UserID == "" {
		return ActivityRecord{}, fmt.Errorf("%w: missing user_id", ErrMalformedRecord)
	}
	if r.Date == nil {
		return ActivityRecord{}, fmt.Errorf("%w: missing date", ErrMalformedRecord)
	}
	if r.ActivityType == nil || *r.ActivityType == "" {
		return ActivityRecord{}, fmt.Errorf("%w: missing activity_type", ErrMalformedRecord)
	}
	if r.Value == nil {
		return ActivityRecord{}, fmt.Errorf("%w: missing value", ErrMalformedRecord)
	}
	if r.Unit == nil || *r.Unit == "" {
		return ActivityRecord{}, fmt.Errorf("%w: missing unit", ErrMalformedRecord)
	}

	date, err := parseDate(*r.Date)
	if err != nil {
		return ActivityRecord{}, fmt.Errorf("%w: unparseable date %q", ErrMalformedRecord, *r.Date)
	}

	// Device types are stored as received; the enum is only enforced for
	// manual logging.
	return ActivityRecord{
		UserID: *r.UserID,
		Date:   date,
		Type:   ActivityType(*r.ActivityType),
		Value:  *r.Value,
		Unit:   *r.Unit,
	}, nil
}
