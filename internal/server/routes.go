package server

import (
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Currency Quiz API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(deps.Logger, deps.DB))

	r.Route("/api", func(r chi.Router) {
		r.Get("/currencies", handleListCurrencies())
		r.Get("/rates/{base}", handleRates(deps.Logger, deps.Rates))

		r.Route("/game", func(r chi.Router) {
			r.Post("/start", handleStartGame(deps.Sessions))
			r.Get("/{sessionID}/state", handleGameState(deps.Sessions))
			r.Post("/{sessionID}/answer", handleAnswer(deps.Sessions))
			r.Post("/{sessionID}/next", handleNextQuestion(deps.Sessions))
			r.Post("/{sessionID}/stop", handleStopGame(deps.Sessions))
			r.Get("/{sessionID}/events", handleEvents(deps.Sessions))
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", handleListHistory(deps.History))
			r.Get("/stats", handleHistoryStats(deps.History))
			r.Delete("/", handleClearHistory(deps.History))
		})

		r.Route("/prefs", func(r chi.Router) {
			r.Get("/theme", handleGetTheme(deps.Prefs))
			r.Put("/theme", handleSetTheme(deps.Prefs))
		})
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			deps.Logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
