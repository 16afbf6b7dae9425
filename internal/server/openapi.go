package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Currency Quiz API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the currency-conversion quiz.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/currencies
	getCurrencies, _ := r.NewOperationContext(http.MethodGet, "/api/currencies")
	getCurrencies.SetSummary("List currencies")
	getCurrencies.SetDescription("Returns the supported currencies with names and flags, popular ones first.")
	getCurrencies.AddRespStructure(CurrenciesResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getCurrencies)

	// GET /api/rates/{base}
	getRates, _ := r.NewOperationContext(http.MethodGet, "/api/rates/{base}")
	getRates.SetSummary("Current rates")
	getRates.SetDescription("Fetches a fresh exchange-rate snapshot for the base currency. Never cached.")
	getRates.AddRespStructure(RatesResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getRates.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	getRates.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadGateway))
	_ = r.AddOperation(getRates)

	// POST /api/game/start
	postStart, _ := r.NewOperationContext(http.MethodPost, "/api/game/start")
	postStart.SetSummary("Start a game")
	postStart.SetDescription("Creates a session and returns its first question. Timer is clamped to 5–300 s in steps of 5; freePlay disables it.")
	postStart.AddReqStructure(StartGameRequest{})
	postStart.AddRespStructure(StartGameResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadGateway))
	_ = r.AddOperation(postStart)

	// GET /api/game/{sessionID}/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/game/{sessionID}/state")
	getState.SetSummary("Get game state")
	getState.SetDescription("Returns the session status, countdown, current question, and results so far.")
	getState.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getState.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getState)

	// POST /api/game/{sessionID}/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/game/{sessionID}/answer")
	postAnswer.SetSummary("Submit answer")
	postAnswer.SetDescription("Scores the answer against the current question and returns the next question when rates are available.")
	postAnswer.AddReqStructure(AnswerRequest{})
	postAnswer.AddRespStructure(AnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAnswer)

	// POST /api/game/{sessionID}/next
	postNext, _ := r.NewOperationContext(http.MethodPost, "/api/game/{sessionID}/next")
	postNext.SetSummary("Re-issue question")
	postNext.SetDescription("Generates a fresh question after a rate-fetch failure.")
	postNext.AddRespStructure(NextQuestionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postNext.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postNext.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postNext.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadGateway))
	_ = r.AddOperation(postNext)

	// POST /api/game/{sessionID}/stop
	postStop, _ := r.NewOperationContext(http.MethodPost, "/api/game/{sessionID}/stop")
	postStop.SetSummary("Stop game")
	postStop.SetDescription("Ends the game, persists it to history when questions were answered, and returns the final record.")
	postStop.AddRespStructure(StopGameResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postStop.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postStop)

	// GET /api/game/{sessionID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/game/{sessionID}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream with timer ticks and the game-ended signal.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/history
	listHistory, _ := r.NewOperationContext(http.MethodGet, "/api/history")
	listHistory.SetSummary("List game history")
	listHistory.SetDescription("Returns up to the last 50 games, oldest first.")
	listHistory.AddRespStructure([]gameRecordSchema{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listHistory)

	// GET /api/history/stats
	getStats, _ := r.NewOperationContext(http.MethodGet, "/api/history/stats")
	getStats.SetSummary("Aggregate statistics")
	getStats.SetDescription("Total games, mean accuracy, total questions, and the best game.")
	getStats.AddRespStructure(statsSchema{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getStats)

	// DELETE /api/history
	clearHistory, _ := r.NewOperationContext(http.MethodDelete, "/api/history")
	clearHistory.SetSummary("Clear game history")
	clearHistory.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	_ = r.AddOperation(clearHistory)

	// GET /api/prefs/theme
	getTheme, _ := r.NewOperationContext(http.MethodGet, "/api/prefs/theme")
	getTheme.SetSummary("Get theme preference")
	getTheme.AddRespStructure(ThemeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getTheme)

	// PUT /api/prefs/theme
	putTheme, _ := r.NewOperationContext(http.MethodPut, "/api/prefs/theme")
	putTheme.SetSummary("Set theme preference")
	putTheme.AddReqStructure(ThemeResponse{})
	putTheme.AddRespStructure(ThemeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	putTheme.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(putTheme)

	return r.Spec
}

// Schema-only mirrors of the history types, so the reflector doesn't walk
// time.Time into an object.
type gameRecordSchema struct {
	Date              string            `json:"date"`
	BaseCurrency      string            `json:"baseCurrency"`
	TargetCurrency    string            `json:"targetCurrency"`
	QuestionsAnswered int               `json:"questionsAnswered"`
	Accuracy          float64           `json:"accuracy"`
	Duration          int               `json:"duration"`
	IsFreePlay        bool              `json:"isFreePlay"`
	ReverseMode       bool              `json:"reverseMode"`
	Results           []answerRowSchema `json:"results"`
}

type answerRowSchema struct {
	Question      string  `json:"question"`
	UserAnswer    float64 `json:"userAnswer"`
	CorrectAnswer float64 `json:"correctAnswer"`
	Accuracy      float64 `json:"accuracy"`
}

type statsSchema struct {
	TotalGames     int               `json:"totalGames"`
	AvgAccuracy    float64           `json:"avgAccuracy"`
	TotalQuestions int               `json:"totalQuestions"`
	BestGame       *gameRecordSchema `json:"bestGame,omitempty"`
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
