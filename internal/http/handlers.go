package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"expensetracker/internal/catalog"
	"expensetracker/internal/export"
	applog "expensetracker/internal/log"
	"expensetracker/internal/tools"
)

const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tools.Tools())
}

// handleCallTool runs one tool. The request body is the parameter object.
// Expected failures come back as 200 with a status:error envelope.
func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}

	start := time.Now()
	result, err := s.tools.Call(ctx, name, body)
	s.calls.LogToolCall(ctx, name, time.Since(start).Milliseconds(), err)

	if err != nil {
		switch {
		case errors.Is(err, tools.ErrUnknownTool):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, tools.ErrInvalidParams):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			applog.NewStructuredLogger(applog.FromContext(ctx)).
				LogError(ctx, "Tool call error", err, applog.OpToolCall, applog.NewFields().WithTool(name))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCategories serves the catalog file as stored, without re-encoding.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := s.tools.ReadResource(ctx, catalog.ResourceURI)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Read categories failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "categories unavailable")
		return
	}
	w.Header().Set("Content-Type", res.MimeType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, res.Text)
}

// handleExport serves the ledger as a file download, oldest entry first.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	format := chi.URLParam(r, "format")
	if format != formatCSV && format != formatXLSX {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unsupported export format %q", format))
		return
	}

	q := r.URL.Query()
	start, end := q.Get("start_date"), q.Get("end_date")
	if start == "" || end == "" {
		writeError(w, http.StatusBadRequest, "start_date and end_date are required")
		return
	}

	rows, err := s.exporter.ExportExpenses(ctx, start, end)
	if err != nil {
		applog.NewStructuredLogger(applog.FromContext(ctx)).
			LogError(ctx, "Export query failed", err, applog.OpExport, nil)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	filename := fmt.Sprintf("expenses_%s_%s.%s", start, end, format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	switch format {
	case formatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		if err := export.WriteCSV(w, rows); err != nil {
			applog.FromContext(ctx).ErrorContext(ctx, "Write csv failed", applog.FieldError, err)
		}
	case formatXLSX:
		data, err := export.EncodeXLSX(rows)
		if err != nil {
			applog.FromContext(ctx).ErrorContext(ctx, "Encode xlsx failed", applog.FieldError, err)
			w.Header().Del("Content-Disposition")
			writeError(w, http.StatusInternalServerError, "export failed")
			return
		}
		w.Header().Set("Content-Type", xlsxContentType)
		_, _ = w.Write(data)
	}

	applog.FromContext(ctx).InfoContext(ctx, "Ledger exported",
		applog.FieldOperation, applog.OpExport, "format", format, applog.FieldCount, len(rows))
}
