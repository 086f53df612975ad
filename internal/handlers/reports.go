package handlers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/stanstork/visitor-kiosk-api/internal/apperr"
	"github.com/stanstork/visitor-kiosk-api/internal/export"
	"github.com/stanstork/visitor-kiosk-api/internal/models"
	"github.com/stanstork/visitor-kiosk-api/internal/service"
)

const (
	csvFilename  = "visitor_logs.csv"
	xlsxFilename = "visitor_logs.xlsx"
	xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ReportHandler struct {
	reports *service.ReportService
	logger  zerolog.Logger
}

func NewReportHandler(reports *service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger.With().Str("handler", "reports").Logger()}
}

func (h *ReportHandler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.reports.History(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if records == nil {
		records = []models.VisitRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *ReportHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.Stats(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *ReportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "text/csv; charset=utf-8", csvFilename, export.WriteCSV)
}

// ExportCSVLegacy serves the old /visits/export path and points callers at
// its replacement.
func (h *ReportHandler) ExportCSVLegacy(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Deprecation", "true")
	w.Header().Set("Link", `</export/csv>; rel="successor-version"`)
	h.ExportCSV(w, r)
}

func (h *ReportHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, xlsxMimeType, xlsxFilename, export.WriteXLSX)
}

// export renders into memory first so a failure still produces a JSON error
// instead of a truncated file.
func (h *ReportHandler) export(
	w http.ResponseWriter,
	r *http.Request,
	contentType, filename string,
	render func(io.Writer, []models.VisitRecord) error,
) {
	records, err := h.reports.History(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, records); err != nil {
		writeError(w, h.logger, r, apperr.Storage("failed to render export", err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
