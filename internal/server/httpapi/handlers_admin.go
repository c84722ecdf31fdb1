package httpapi

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	list, err := h.stats.Employees(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) employeeTimesheets(w http.ResponseWriter, r *http.Request) {
	list, err := h.timesheets.ListForUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) employeeExport(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	q := r.URL.Query()
	h.sendWorkbook(w, r, "timesheets-"+userID+".xlsx", func(out io.Writer) error {
		return h.timesheets.ExportForUser(r.Context(), userID, q.Get("from"), q.Get("to"), out)
	})
}

func (h *Handler) employeeArchive(w http.ResponseWriter, r *http.Request) {
	url, err := h.timesheets.ArchiveURL(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "date"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
