/*
server.go - HTTP router setup

PURPOSE:
  Wires the chi router: middleware stack, CORS policy, and the full
  route table. Keeping the table in one place makes the API surface
  reviewable at a glance.

SEE ALSO:
  - handlers.go: The handler implementations
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the HTTP router with all routes and middleware.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Member-ID", "X-Roles"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/members", func(r chi.Router) {
			r.Get("/", h.ListMembers)
			r.Post("/", h.CreateMember)
			r.Get("/{id}", h.GetMember)
		})

		r.Route("/courts", func(r chi.Router) {
			r.Get("/", h.ListCourts)
			r.Post("/", h.CreateCourt)
		})

		r.Get("/calendar", h.GetCalendar)

		r.Route("/reservations", func(r chi.Router) {
			r.Get("/", h.MyReservations)
			r.Post("/", h.Book)
			r.Post("/{id}/cancel", h.CancelReservation)
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/balance", h.GetBalance)
			r.Get("/transactions", h.GetTransactions)
			r.Route("/deposits", func(r chi.Router) {
				r.Post("/", h.SubmitDeposit)
				r.Get("/pending", h.ListPendingDeposits)
				r.Post("/{id}/approve", h.ApproveDeposit)
				r.Post("/{id}/reject", h.RejectDeposit)
			})
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.ListTournaments)
			r.Post("/", h.CreateTournament)
			r.Get("/{id}", h.GetTournament)
			r.Post("/{id}/join", h.JoinTournament)
			r.Post("/{id}/schedule", h.GenerateSchedule)
		})

		r.Post("/matches/{id}/result", h.RecordResult)

		r.Route("/match-requests", func(r chi.Router) {
			r.Get("/", h.ListMatchRequests)
			r.Post("/", h.CreateMatchRequest)
			r.Get("/{id}", h.GetMatchRequest)
			r.Post("/{id}/join", h.JoinMatchRequest)
			r.Post("/{id}/leave", h.LeaveMatchRequest)
			r.Post("/{id}/cancel", h.CancelMatchRequest)
		})
	})

	return r
}
