package ingest

import (
	"context"
	"log"

	"example.com/wellness/internal/domain"
)

// Syncer is the slice of the domain service the handler needs.
type Syncer interface {
	SyncDeviceData(ctx context.Context, userID string, batch []domain.DeviceRecord) (domain.SyncResult, error)
}

// SyncHandler commits consumed device batches through the domain service.
type SyncHandler struct {
	service Syncer
}

// NewSyncHandler constructs a SyncHandler.
func NewSyncHandler(service Syncer) *SyncHandler {
	return &SyncHandler{service: service}
}

// Handle reconciles one sync request into the store.
func (h *SyncHandler) Handle(ctx context.Context, req Request) error {
	result, err := h.service.SyncDeviceData(ctx, req.UserID, req.Records)
	if err != nil {
		return err
	}
	log.Printf("ingest: synced %d records for user %s (checkpoint %d)", len(result.Synced), req.UserID, result.Checkpoint.ID)
	return nil
}
