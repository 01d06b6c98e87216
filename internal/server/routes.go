package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Bingo API", "/openapi.json", "/docs"))

	r.Route("/api", func(r chi.Router) {
		r.With(apiKeyMiddleware(deps.SubmitKeyHash)).
			Post("/actions", handleSubmitAction(logger, deps.Submitter))

		r.Get("/events/active", handleActiveEvents(deps.Reader))
		r.Route("/events/{eventID}", func(r chi.Router) {
			r.Use(eventMiddleware(deps.Reader))
			r.Get("/leaderboard", handleLeaderboard(deps.Reader))

			r.Route("/teams/{teamID}", func(r chi.Router) {
				r.Use(teamMiddleware(deps.Reader))
				r.Get("/board", handleBoard(deps.Reader))
				r.Get("/proofs", handleProofs(deps.Reader))
				r.Get("/stream", handleStream(deps.Broker))
			})
		})
	})
}
