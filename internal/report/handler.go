package report

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/asc-academy/evaluation-portal/internal/transport"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ServiceAPI interface {
	Export(filter ExportFilter) (*bytes.Buffer, string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// Export handles GET /evaluations/export?departmentId=&year=
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filter := ExportFilter{
		DepartmentID: r.URL.Query().Get("departmentId"),
	}
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "year must be a number")
			return
		}
		filter.Year = year
	}

	buf, filename, err := h.Service.Export(filter)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)

	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Error("failed to stream export", "error", err)
	}
}
