package handlers

import (
	"net/http"

	"github.com/mauer01/5D-Chess-League-Bot/services"
)

type AdminHandler struct {
	backupService services.BackupService
	reportService services.ReportService
}

func NewAdminHandler(bs services.BackupService, rs services.ReportService) *AdminHandler {
	return &AdminHandler{backupService: bs, reportService: rs}
}

// Backup uploads a full database snapshot to the object store.
func (h *AdminHandler) Backup(w http.ResponseWriter, r *http.Request) {
	if h.backupService == nil {
		errorResponse(w, r, http.StatusServiceUnavailable, "backups are not configured")
		return
	}

	result, err := h.backupService.Backup(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"backup": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PurgeStaleReports drops unconfirmed claims past the staleness window.
// The periodic sweeper does this too; the endpoint exists for manual runs.
func (h *AdminHandler) PurgeStaleReports(w http.ResponseWriter, r *http.Request) {
	purged, err := h.reportService.PurgeStaleReports(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"purged": purged}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
