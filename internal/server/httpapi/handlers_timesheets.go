package httpapi

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listTimesheets(w http.ResponseWriter, r *http.Request) {
	list, err := h.timesheets.List(r.Context(), caller(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) getTimesheet(w http.ResponseWriter, r *http.Request) {
	view, err := h.timesheets.GetByDate(r.Context(), caller(r), chi.URLParam(r, "date"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) submitTimesheet(w http.ResponseWriter, r *http.Request) {
	ts, err := h.timesheets.Submit(r.Context(), caller(r), chi.URLParam(r, "date"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

func (h *Handler) exportTimesheets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.sendWorkbook(w, r, "timesheets.xlsx", func(out io.Writer) error {
		return h.timesheets.Export(r.Context(), caller(r), q.Get("from"), q.Get("to"), out)
	})
}

func (h *Handler) userStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.stats.UserStats(r.Context(), caller(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
