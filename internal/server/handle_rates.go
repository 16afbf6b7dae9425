package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fxplay/currencyquiz/internal/currency"
	"github.com/fxplay/currencyquiz/internal/quiz"
)

type RatesResponse struct {
	Base  string        `json:"base"`
	Rates quiz.Snapshot `json:"rates"`
}

// handleRates is the snapshot passthrough driving the setup screen's rate
// display. A provider failure surfaces as 502 and changes nothing.
func handleRates(logger *slog.Logger, source RateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base := chi.URLParam(r, "base")
		if !currency.Known(base) {
			writeError(w, http.StatusNotFound, "unknown currency code")
			return
		}

		snap, err := source.Latest(r.Context(), base)
		if errors.Is(err, quiz.ErrRateUnavailable) {
			logger.Error("fetching rates", "base", base, "error", err)
			writeError(w, http.StatusBadGateway, "exchange rates unavailable")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, RatesResponse{Base: base, Rates: snap})
	}
}

type CurrenciesResponse struct {
	Popular    []string        `json:"popular"`
	Currencies []currency.Info `json:"currencies"`
}

func handleListCurrencies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, CurrenciesResponse{
			Popular:    currency.Popular,
			Currencies: currency.All(),
		})
	}
}
