package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// NewRouter builds the HTTP router for the table API
func NewRouter(handler *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           60 * 15,
	}))

	r.Route("/table", func(rr chi.Router) {
		rr.Post("/bets", handler.PlaceBet)
		rr.Post("/bets/remove", handler.RemoveBet)
		rr.Post("/roll", handler.Roll)
		rr.Post("/working", handler.SetWorking)
		rr.Get("/state/{discordID}", handler.TableState)
	})

	r.Route("/fairness", func(rr chi.Router) {
		rr.Post("/reveal-seed", handler.RevealSeed)
		rr.Post("/replay", handler.Replay)
	})

	r.Route("/players", func(rr chi.Router) {
		rr.Get("/scoreboard", handler.Scoreboard)
		rr.Get("/{discordID}", handler.GetPlayer)
	})

	return r
}
