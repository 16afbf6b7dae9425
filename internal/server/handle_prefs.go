package server

import (
	"errors"
	"net/http"

	"github.com/fxplay/currencyquiz/internal/storage"
)

const themeKey = "theme"

type ThemeResponse struct {
	Theme string `json:"theme"`
}

func handleGetTheme(prefs storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := prefs.Load(r.Context(), themeKey)
		if errors.Is(err, storage.ErrNotFound) {
			// Unset: the client falls back to the system preference.
			writeJSON(w, http.StatusOK, ThemeResponse{})
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, ThemeResponse{Theme: string(data)})
	}
}

func handleSetTheme(prefs storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ThemeResponse
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Theme != "light" && req.Theme != "dark" {
			writeError(w, http.StatusBadRequest, "theme must be light or dark")
			return
		}

		if err := prefs.Save(r.Context(), themeKey, []byte(req.Theme)); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, req)
	}
}
