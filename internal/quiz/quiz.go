// Package quiz implements the conversion-quiz engine: log-normal amount
// sampling, question generation against a live rate snapshot, and answer
// scoring. It has no I/O — rates come in as a Snapshot, randomness comes in
// as an injected source.
package quiz

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrRateUnavailable is returned when a rate snapshot is missing a currency
// needed to build a question. Callers re-issue the request; there is no
// retry policy here.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// Snapshot maps currency codes to their rate in units per one unit of the
// snapshot's base currency. Snapshots are supplied fresh per question and
// never cached or checked for staleness.
type Snapshot map[string]float64

// Question is one conversion prompt. Immutable once created; superseded by
// the next question.
type Question struct {
	FromCurrency  string  `json:"fromCurrency"`
	ToCurrency    string  `json:"toCurrency"`
	Amount        float64 `json:"amount"`
	CorrectAnswer float64 `json:"correctAnswer"`
}

// Prompt renders the question the way the results table shows it,
// e.g. "1,500 JPY = ? USD".
func (q Question) Prompt() string {
	return formatAmount(q.Amount) + " " + q.FromCurrency + " = ? " + q.ToCurrency
}

// AnswerResult records one submitted answer. Appended in submission order
// for the active game and never mutated afterward.
type AnswerResult struct {
	Question      string  `json:"question"`
	UserAnswer    float64 `json:"userAnswer"`
	CorrectAnswer float64 `json:"correctAnswer"`
	Accuracy      float64 `json:"accuracy"`
}

// GameRecord summarizes one completed or stopped game.
type GameRecord struct {
	Date              time.Time      `json:"date"`
	BaseCurrency      string         `json:"baseCurrency"`
	TargetCurrency    string         `json:"targetCurrency"`
	QuestionsAnswered int            `json:"questionsAnswered"`
	Accuracy          float64        `json:"accuracy"`
	DurationSeconds   int            `json:"duration"`
	FreePlay          bool           `json:"isFreePlay"`
	ReverseMode       bool           `json:"reverseMode"`
	Results           []AnswerResult `json:"results"`
}

// formatAmount renders the prompt amount with thousands separators and no
// trailing zeros: 0.75, 12.5, 50, 1,500.
func formatAmount(a float64) string {
	s := strconv.FormatFloat(a, 'f', -1, 64)
	intPart, frac, hasFrac := strings.Cut(s, ".")

	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String()
	if neg {
		out = "-" + out
	}
	if hasFrac {
		out += "." + frac
	}
	return out
}
