package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Auth        *AuthHandler
	Session     *SessionHandler
	Leaderboard *LeaderboardHandler
	Balance     *BalanceHandler
	Player      *PlayerHandler
	Action      *ActionHandler
	Middleware  *AuthMiddleware
	// MemesDir, when set, is served under /memes/ so deck image URLs resolve.
	MemesDir string
}

// NewHandler mounts every route. Nil handlers leave their routes out.
func NewHandler(h Handlers, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	if h.Auth != nil {
		r.Route("/auth", func(r chi.Router) {
			r.Use(CORS(corsOrigins))
			r.Post("/wallet", h.Auth.ConnectWallet)
			r.Post("/refresh", h.Auth.Refresh)
			r.Post("/logout", h.Auth.Logout)
		})
	}

	if h.MemesDir != "" {
		r.Handle("/memes/*", http.StripPrefix("/memes/", http.FileServer(http.Dir(h.MemesDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(CORS(corsOrigins))

			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("welcome"))
			})

			if h.Session != nil {
				r.Get("/memes", h.Session.ListMemes)

				r.Route("/sessions", func(r chi.Router) {
					r.Use(h.Middleware.OptionalAuth)
					r.Post("/", h.Session.CreateSession)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", h.Session.GetSession)
						r.Post("/start", h.Session.StartSession)
						r.Post("/votes", h.Session.Vote)
						r.Post("/reset", h.Session.ResetSession)
						r.Get("/report", h.Session.DownloadReport)
					})
				})
			}

			if h.Leaderboard != nil {
				r.Get("/leaderboard", h.Leaderboard.GetLeaderboard)
			}

			if h.Balance != nil {
				r.Route("/balance", func(r chi.Router) {
					r.Use(h.Middleware.RequireAuth)
					r.Get("/", h.Balance.GetBalance)
					r.Post("/deposit", h.Balance.Deposit)
					r.Post("/withdraw", h.Balance.Withdraw)
				})
			}

			if h.Player != nil {
				r.Route("/players/me", func(r chi.Router) {
					r.Use(h.Middleware.RequireAuth)
					r.Get("/stats", h.Player.GetStats)
				})
			}
		})

		// The vote action is embedded by third-party clients and sets its own
		// open CORS headers.
		if h.Action != nil {
			r.Route("/actions/vote", func(r chi.Router) {
				r.Options("/", h.Action.Options)
				r.Get("/", h.Action.Metadata)
				r.Post("/", h.Action.Transaction)
			})
		}
	})

	return r
}
