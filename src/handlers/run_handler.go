// backend/src/handlers/run_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/username/gstrecon/backend/src/logger"
	"github.com/username/gstrecon/backend/src/services"
	"github.com/username/gstrecon/backend/src/utils"
)

type RunHandler struct {
	reconService services.ReconciliationService
}

func NewRunHandler(service services.ReconciliationService) *RunHandler {
	return &RunHandler{
		reconService: service,
	}
}

// HandleListRuns returns the most recent reconciliation runs, newest first.
// An optional ?limit= query parameter caps the page size.
func (h *RunHandler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			utils.SendJSONError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	runs, err := h.reconService.ListRuns(limit)
	if err != nil {
		ctxLogger.Error("Failed to list reconciliation runs", "error", err)
		utils.SendJSONError(w, "Failed to fetch reconciliation runs", http.StatusInternalServerError)
		return
	}

	utils.SendJSONResponse(w, runs, http.StatusOK)
}

// HandleGetRun returns one persisted run by its public run ID.
func (h *RunHandler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())
	runID := chi.URLParam(r, "runID")

	run, err := h.reconService.GetRun(runID)
	if err != nil {
		if errors.Is(err, services.ErrRunNotFound) {
			utils.SendJSONError(w, "Reconciliation run not found", http.StatusNotFound)
			return
		}
		ctxLogger.Error("Failed to fetch reconciliation run", "runID", runID, "error", err)
		utils.SendJSONError(w, "Failed to fetch reconciliation run", http.StatusInternalServerError)
		return
	}

	utils.SendJSONResponse(w, run, http.StatusOK)
}

// HandleGetRunResults returns the cached per-invoice results of a recent run.
// Results expire from the cache; expired runs return 410.
func (h *RunHandler) HandleGetRunResults(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	results, found := h.reconService.GetRunResults(runID)
	if !found {
		utils.SendJSONError(w, "Results for this run are no longer available; re-run the reconciliation", http.StatusGone)
		return
	}

	utils.SendJSONResponse(w, results, http.StatusOK)
}
