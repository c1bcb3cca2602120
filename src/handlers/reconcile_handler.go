// backend/src/handlers/reconcile_handler.go
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/username/gstrecon/backend/src/config"
	"github.com/username/gstrecon/backend/src/logger"
	"github.com/username/gstrecon/backend/src/security/validation"
	"github.com/username/gstrecon/backend/src/services"
	"github.com/username/gstrecon/backend/src/utils"
)

type ReconcileHandler struct {
	reconService services.ReconciliationService
}

func NewReconcileHandler(service services.ReconciliationService) *ReconcileHandler {
	return &ReconcileHandler{
		reconService: service,
	}
}

// uploadedWorkbooks pulls the two spreadsheet files out of a multipart request
// and validates both before any parsing happens.
func (h *ReconcileHandler) uploadedWorkbooks(w http.ResponseWriter, r *http.Request) (purchase, gstr2b multipart.File, ok bool) {
	ctxLogger := logger.FromContext(r.Context())

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		ctxLogger.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to process upload or files too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return nil, nil, false
	}

	purchase = h.formWorkbook(w, r, "purchaseFile")
	if purchase == nil {
		return nil, nil, false
	}
	gstr2b = h.formWorkbook(w, r, "gstr2bFile")
	if gstr2b == nil {
		purchase.Close()
		return nil, nil, false
	}
	return purchase, gstr2b, true
}

func (h *ReconcileHandler) formWorkbook(w http.ResponseWriter, r *http.Request, field string) multipart.File {
	ctxLogger := logger.FromContext(r.Context())

	file, fileHeader, err := r.FormFile(field)
	if err != nil {
		ctxLogger.Warn("Failed to retrieve file from request", "field", field, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Failed to retrieve '%s' from request.", field), http.StatusBadRequest)
		return nil
	}

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		file.Close()
		ctxLogger.Warn("Uploaded file too large", "field", field, "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return nil
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		file.Close()
		ctxLogger.Warn("Invalid client-declared file type", "field", field, "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		file.Close()
		ctxLogger.Warn("Server-side file content validation failed", "field", field, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	ctxLogger.Debug("File content validated by magic bytes", "field", field, "filename", fileHeader.Filename, "detectedType", detectedContentType)

	return file
}

// HandleReconcile accepts the purchase register and GSTR-2B workbooks, runs
// the reconciliation and responds with the summary payload.
func (h *ReconcileHandler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	purchaseFile, gstr2bFile, ok := h.uploadedWorkbooks(w, r)
	if !ok {
		return
	}
	defer purchaseFile.Close()
	defer gstr2bFile.Close()

	opts := services.RunOptions{
		ClientGSTIN: strings.ToUpper(strings.TrimSpace(r.FormValue("clientGstin"))),
		Period:      strings.TrimSpace(r.FormValue("period")),
	}
	if err := validation.ValidateGSTIN(opts.ClientGSTIN); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateTaxPeriod(opts.Period); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.reconService.ProcessReconciliation(purchaseFile, gstr2bFile, opts)
	if err != nil {
		h.sendServiceError(w, ctxLogger, err)
		return
	}

	utils.SendJSONResponse(w, summary, http.StatusOK)
}

// HandleDetailedReport responds with every discrepancy annotated with its
// follow-up action and priority.
func (h *ReconcileHandler) HandleDetailedReport(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	purchaseFile, gstr2bFile, ok := h.uploadedWorkbooks(w, r)
	if !ok {
		return
	}
	defer purchaseFile.Close()
	defer gstr2bFile.Close()

	report, err := h.reconService.BuildDetailedReport(purchaseFile, gstr2bFile)
	if err != nil {
		h.sendServiceError(w, ctxLogger, err)
		return
	}

	utils.SendJSONResponse(w, report, http.StatusOK)
}

// HandleActionReport responds with the prioritized action report.
func (h *ReconcileHandler) HandleActionReport(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	purchaseFile, gstr2bFile, ok := h.uploadedWorkbooks(w, r)
	if !ok {
		return
	}
	defer purchaseFile.Close()
	defer gstr2bFile.Close()

	report, err := h.reconService.BuildActionReport(purchaseFile, gstr2bFile)
	if err != nil {
		h.sendServiceError(w, ctxLogger, err)
		return
	}

	utils.SendJSONResponse(w, report, http.StatusOK)
}

// HandleDownloadReport streams the full reconciliation workbook as an xlsx
// attachment.
func (h *ReconcileHandler) HandleDownloadReport(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	purchaseFile, gstr2bFile, ok := h.uploadedWorkbooks(w, r)
	if !ok {
		return
	}
	defer purchaseFile.Close()
	defer gstr2bFile.Close()

	content, filename, err := h.reconService.GenerateReportWorkbook(purchaseFile, gstr2bFile)
	if err != nil {
		h.sendServiceError(w, ctxLogger, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		ctxLogger.Error("Error streaming report workbook", "error", err)
	}
}

func (h *ReconcileHandler) sendServiceError(w http.ResponseWriter, ctxLogger *slog.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrParsingFailed):
		ctxLogger.Warn("Workbook parsing failed", "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		ctxLogger.Error("Reconciliation request failed", "error", err)
		utils.SendJSONError(w, "Internal error during reconciliation", http.StatusInternalServerError)
	}
}
