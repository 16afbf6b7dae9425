package server

import (
	"errors"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fxplay/currencyquiz/internal/currency"
	"github.com/fxplay/currencyquiz/internal/quiz"
)

// Countdown bounds, matching the setup screen: 5–300 seconds in steps of 5.
const (
	minTimerSeconds = 5
	maxTimerSeconds = 300
	timerStep       = 5
)

type StartGameRequest struct {
	BaseCurrency   string `json:"baseCurrency"`
	TargetCurrency string `json:"targetCurrency"`
	ReverseMode    bool   `json:"reverseMode"`
	FreePlay       bool   `json:"freePlay"`
	TimerSeconds   int    `json:"timerSeconds"`
}

// QuestionView is the question as shown to the player. The correct answer
// stays server-side.
type QuestionView struct {
	FromCurrency string  `json:"fromCurrency"`
	ToCurrency   string  `json:"toCurrency"`
	Amount       float64 `json:"amount"`
	Prompt       string  `json:"prompt"`
}

func viewOf(q quiz.Question) QuestionView {
	return QuestionView{
		FromCurrency: q.FromCurrency,
		ToCurrency:   q.ToCurrency,
		Amount:       q.Amount,
		Prompt:       q.Prompt(),
	}
}

type StartGameResponse struct {
	SessionID     string       `json:"sessionId"`
	Question      QuestionView `json:"question"`
	TimeRemaining int          `json:"timeRemaining"`
	FreePlay      bool         `json:"freePlay"`
}

func handleStartGame(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartGameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if !currency.Known(req.BaseCurrency) || !currency.Known(req.TargetCurrency) {
			writeError(w, http.StatusBadRequest, "unknown currency code")
			return
		}

		cfg := GameConfig{
			BaseCurrency:   req.BaseCurrency,
			TargetCurrency: req.TargetCurrency,
			ReverseMode:    req.ReverseMode,
		}
		if !req.FreePlay {
			cfg.TimerSeconds = clampTimer(req.TimerSeconds)
		}

		sess, q, err := sessions.Start(r.Context(), cfg)
		if errors.Is(err, quiz.ErrRateUnavailable) {
			writeError(w, http.StatusBadGateway, "exchange rates unavailable")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, StartGameResponse{
			SessionID:     sess.ID,
			Question:      viewOf(q),
			TimeRemaining: cfg.TimerSeconds,
			FreePlay:      cfg.freePlay(),
		})
	}
}

// clampTimer enforces the 5–300 s range and snaps to the nearest 5.
func clampTimer(seconds int) int {
	if seconds < minTimerSeconds {
		seconds = minTimerSeconds
	}
	if seconds > maxTimerSeconds {
		seconds = maxTimerSeconds
	}
	return int(math.Round(float64(seconds)/timerStep)) * timerStep
}

type AnswerRequest struct {
	Answer *float64 `json:"answer"`
}

type AnswerResponse struct {
	Result        quiz.AnswerResult `json:"result"`
	Badge         quiz.Badge        `json:"badge"`
	BadgeClass    string            `json:"badgeClass"`
	QuestionCount int               `json:"questionCount"`
	NextQuestion  *QuestionView     `json:"nextQuestion"`
}

func handleAnswer(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnswerRequest
		if err := readJSON(r, &req); err != nil || req.Answer == nil {
			writeError(w, http.StatusBadRequest, "a numeric answer is required")
			return
		}
		answer := *req.Answer
		if math.IsNaN(answer) || math.IsInf(answer, 0) {
			writeError(w, http.StatusBadRequest, "a numeric answer is required")
			return
		}

		outcome, err := sessions.Answer(r.Context(), chi.URLParam(r, "sessionID"), answer)
		if errors.Is(err, ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		if errors.Is(err, ErrGameEnded) {
			writeError(w, http.StatusConflict, "game has ended")
			return
		}
		if errors.Is(err, errNoQuestion) {
			writeError(w, http.StatusConflict, "no active question")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := AnswerResponse{
			Result:        outcome.Result,
			Badge:         outcome.Badge,
			BadgeClass:    outcome.Badge.Class(),
			QuestionCount: outcome.QuestionCount,
		}
		if outcome.Next != nil {
			v := viewOf(*outcome.Next)
			resp.NextQuestion = &v
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type NextQuestionResponse struct {
	Question QuestionView `json:"question"`
}

func handleNextQuestion(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := sessions.NextQuestion(r.Context(), chi.URLParam(r, "sessionID"))
		if errors.Is(err, ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		if errors.Is(err, ErrGameEnded) {
			writeError(w, http.StatusConflict, "game has ended")
			return
		}
		if errors.Is(err, errStaleQuestion) {
			writeError(w, http.StatusConflict, "question superseded")
			return
		}
		if errors.Is(err, quiz.ErrRateUnavailable) {
			writeError(w, http.StatusBadGateway, "exchange rates unavailable")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, NextQuestionResponse{Question: viewOf(q)})
	}
}

type GameStateResponse struct {
	Status        string              `json:"status"`
	TimeRemaining int                 `json:"timeRemaining"`
	FreePlay      bool                `json:"freePlay"`
	QuestionCount int                 `json:"questionCount"`
	Question      *QuestionView       `json:"question"`
	Results       []quiz.AnswerResult `json:"results"`
}

func handleGameState(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := sessions.State(chi.URLParam(r, "sessionID"))
		if errors.Is(err, ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := GameStateResponse{
			Status:        st.Status,
			TimeRemaining: st.TimeRemaining,
			FreePlay:      st.FreePlay,
			QuestionCount: st.QuestionCount,
			Results:       st.Results,
		}
		if st.Question != nil {
			v := viewOf(*st.Question)
			resp.Question = &v
		}
		if resp.Results == nil {
			resp.Results = []quiz.AnswerResult{}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type StopGameResponse struct {
	Record quiz.GameRecord `json:"record"`
	Rank   quiz.Badge      `json:"rank"`
}

func handleStopGame(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := sessions.Stop(r.Context(), chi.URLParam(r, "sessionID"))
		if errors.Is(err, ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, StopGameResponse{
			Record: rec,
			Rank:   quiz.BadgeFor(rec.Accuracy),
		})
	}
}
