package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cashflow/internal/export"
	applog "cashflow/internal/log"
)

// handleExport downloads the filtered list as CSV (default) or XLSX.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = export.FormatCSV
	}
	contentType, ok := export.ContentType(format)
	if !ok {
		FailResponse(http.StatusBadRequest, MsgUnsupportedType).
			Data(map[string]string{"format": "Must be csv or xlsx"}).
			Write(w)
		return
	}

	q, ok := s.parseQuery(w, r)
	if !ok {
		return
	}
	list, err := s.svc.List(r.Context(), q)
	if err != nil {
		s.internalError(w, r, "Failed to list cash flows for export", err, applog.OpExport)
		return
	}

	// Render fully before writing so a failure can still produce a 500.
	var buf bytes.Buffer
	if err := export.Write(&buf, format, list); err != nil {
		s.internalError(w, r, "Failed to render export", err, applog.OpExport)
		return
	}

	filename := fmt.Sprintf("cash-flows-%s.%s", time.Now().Format("20060102"), format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Cash flows exported",
		applog.FieldComponent, applog.ComponentExport,
		applog.FieldFormat, format,
		applog.FieldCount, len(list))
}

// handleExportSheets pushes the filtered list to the configured spreadsheet.
func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	q, ok := s.parseQuery(w, r)
	if !ok {
		return
	}
	list, err := s.svc.List(r.Context(), q)
	if err != nil {
		s.internalError(w, r, "Failed to list cash flows for export", err, applog.OpExport)
		return
	}

	rng, err := s.exporter.Export(r.Context(), list)
	if err != nil {
		s.internalError(w, r, "Failed to export to Google Sheets", err, applog.OpExport)
		return
	}
	NewResponse(MsgSheetsExportOK).Data(map[string]any{
		"range": rng,
		"total": len(list),
	}).Write(w)
}
