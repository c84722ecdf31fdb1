package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/timekeeper/internal/logging"
	"github.com/dmitrijs2005/timekeeper/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// NewRouter wires the routes. Everything under /api except the auth endpoints
// requires a bearer access token signed with secret.
func NewRouter(h *Handler, secret []byte, origins []string, l logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(requestLogger(l))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/token/refresh", h.refresh)
		r.Post("/logout", h.logout)

		r.Group(func(r chi.Router) {
			r.Use(authenticate(secret))

			r.Get("/user", h.currentUser)
			r.Get("/stats", h.userStats)

			r.Post("/tasks", h.createTask)
			r.Get("/tasks/{date}", h.listTasks)
			r.Put("/tasks/{id}", h.updateTask)
			r.Delete("/tasks/{id}", h.deleteTask)

			r.Get("/timesheets", h.listTimesheets)
			r.Get("/timesheets/export", h.exportTimesheets)
			r.Get("/timesheets/{date}", h.getTimesheet)
			r.Post("/timesheets/{date}/submit", h.submitTimesheet)

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireRole(models.RoleAdmin))

				r.Get("/users", h.listEmployees)
				r.Get("/users/{userId}/timesheets", h.employeeTimesheets)
				r.Get("/users/{userId}/timesheets/export", h.employeeExport)
				r.Get("/users/{userId}/timesheets/{date}/archive", h.employeeArchive)
			})
		})
	})

	return r
}
