package routes

import (
	"net/http"
	"time"

	"github.com/Dosada05/club-ladder/handlers"
	"github.com/Dosada05/club-ladder/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // alias, чтобы не конфликтовать с нашим middleware
	"github.com/go-chi/cors"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Club       *handlers.ClubHandler
	Match      *handlers.MatchHandler
	Tournament *handlers.TournamentHandler
	Archive    *handlers.ArchiveHandler
	WebSocket  *handlers.WebSocketHandler
}

type Options struct {
	Verifier       middleware.TokenVerifier
	Members        middleware.MemberLookup
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Websocket живет вне таймаута: соединение долгое
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(opts.RequestTimeout))

		r.Post("/clubs", h.Auth.CreateClub)
		r.Post("/login", h.Auth.Login)

		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.Verifier))
			adminOnly := middleware.RequireAdmin(opts.Members)

			r.Get("/club", h.Club.GetClubInfo)
			r.With(adminOnly).Put("/club/courts", h.Club.UpdateCourts)

			r.Route("/members", func(r chi.Router) {
				r.Get("/", h.Club.ListMembers)
				r.With(adminOnly).Post("/", h.Club.AddMember)
				r.With(adminOnly).Delete("/{name}", h.Club.RemoveMember)
				r.With(adminOnly).Post("/{name}/promote", h.Club.PromoteMember)
				r.With(adminOnly).Post("/{name}/demote", h.Club.DemoteMember)
			})

			r.Route("/matches", func(r chi.Router) {
				r.Get("/", h.Match.ListMatches)
				r.Post("/", h.Match.RecordMatch)
				r.With(adminOnly).Put("/{matchID}", h.Match.EditMatch)
				r.With(adminOnly).Delete("/{matchID}", h.Match.DeleteMatch)
			})
			r.With(adminOnly).Post("/recompute", h.Match.Recompute)

			r.Get("/rankings", h.Club.GetRankings)
			r.Get("/pairings", h.Club.SuggestPairings)
			r.Post("/pairings/best", h.Club.BestMatch)
			r.Post("/courts/assign", h.Club.AssignCourts)

			r.Route("/tournaments", func(r chi.Router) {
				r.Get("/", h.Tournament.ListHandler)
				r.With(adminOnly).Post("/", h.Tournament.CreateHandler)
				r.Route("/{tournamentID}", func(r chi.Router) {
					r.Get("/", h.Tournament.GetByIDHandler)
					r.Post("/results", h.Tournament.RecordResultHandler)
					r.With(adminOnly).Post("/advance", h.Tournament.AdvanceHandler)
				})
			})

			r.With(adminOnly).Post("/archive", h.Archive.ArchiveClub)
			r.With(adminOnly).Get("/archives", h.Archive.ListArchives)
		})
	})
}
