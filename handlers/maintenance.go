package handlers

import (
	"context"
	"log"
	"net/http"

	"cinestream/config"
	catalogpkg "cinestream/services/catalog"
)

type metadataSyncer interface {
	RefreshMetadata(ctx context.Context, batchSize int) catalogpkg.SyncReport
}

var _ metadataSyncer = (*catalogpkg.Service)(nil)

type MaintenanceHandler struct {
	Syncer     metadataSyncer
	CfgManager *config.Manager
}

func NewMaintenanceHandler(syncer metadataSyncer, cfgManager *config.Manager) *MaintenanceHandler {
	return &MaintenanceHandler{Syncer: syncer, CfgManager: cfgManager}
}

// SyncMetadata runs the metadata repair pass synchronously and reports the
// counts. Secret-guarded at the router; intended to be hit from a scheduler.
func (h *MaintenanceHandler) SyncMetadata(w http.ResponseWriter, r *http.Request) {
	batchSize := h.CfgManager.Get().Maintenance.BatchSize
	log.Printf("[maintenance] metadata sync requested (batch=%d)", batchSize)

	report := h.Syncer.RefreshMetadata(r.Context(), batchSize)
	writeJSON(w, http.StatusOK, report)
}
