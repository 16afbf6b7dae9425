package server

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/fxplay/currencyquiz/internal/history"
	"github.com/fxplay/currencyquiz/internal/quiz"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrGameEnded       = errors.New("game has ended")
	errStaleQuestion   = errors.New("question superseded")
	errNoQuestion      = errors.New("no active question")
)

// RateSource provides a fresh exchange-rate snapshot for a base currency.
// It is the only suspension point in a question cycle.
type RateSource interface {
	Latest(ctx context.Context, base string) (quiz.Snapshot, error)
}

// GameConfig is the immutable setup a session is started with.
type GameConfig struct {
	BaseCurrency   string
	TargetCurrency string
	ReverseMode    bool
	// TimerSeconds is 0 for free play; otherwise the countdown length.
	TimerSeconds int
}

func (c GameConfig) freePlay() bool { return c.TimerSeconds == 0 }

const (
	statusActive = "active"
	statusEnded  = "ended"
)

// Session holds the state of one running game. All mutation happens under
// mu; the rate fetch for the next question runs outside it, guarded by a
// question sequence number so a stale response never overwrites a newer
// question (last-question-wins).
type Session struct {
	ID string

	mu          sync.Mutex
	cfg         GameConfig
	gen         *quiz.Generator
	status      string
	question    quiz.Question
	hasQuestion bool
	seq         int
	results     []quiz.AnswerResult
	remaining   int
	startedAt   time.Time
	record      *quiz.GameRecord
	stopTimer   context.CancelFunc
}

// Sessions owns every live session plus the collaborators a game needs:
// the rate source, the history log, and the SSE broker for timer events.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	rates   RateSource
	history *history.Store
	broker  *Broker
	logger  *slog.Logger

	// tick is one countdown second; tests shrink it.
	tick    time.Duration
	newRand func() *rand.Rand
}

func NewSessions(rates RateSource, hist *history.Store, broker *Broker, logger *slog.Logger) *Sessions {
	return &Sessions{
		sessions: make(map[string]*Session),
		rates:    rates,
		history:  hist,
		broker:   broker,
		logger:   logger,
		tick:     time.Second,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
}

// Start creates a session and generates its first question. A rate failure
// fails the whole start: the caller must not display a question.
func (s *Sessions) Start(ctx context.Context, cfg GameConfig) (*Session, quiz.Question, error) {
	sess := &Session{
		ID:        newSessionID(),
		cfg:       cfg,
		gen:       quiz.NewGenerator(s.newRand()),
		status:    statusActive,
		remaining: cfg.TimerSeconds,
		startedAt: time.Now(),
	}

	q, err := s.nextQuestion(ctx, sess)
	if err != nil {
		return nil, quiz.Question{}, err
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	if !cfg.freePlay() {
		timerCtx, cancel := context.WithCancel(context.Background())
		sess.mu.Lock()
		sess.stopTimer = cancel
		sess.mu.Unlock()
		go s.runTimer(timerCtx, sess)
	}

	return sess, q, nil
}

func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// AnswerOutcome is everything one submission produces.
type AnswerOutcome struct {
	Result        quiz.AnswerResult
	Badge         quiz.Badge
	QuestionCount int
	// Next is nil when the follow-up rate fetch failed; the caller can
	// re-issue via NextQuestion.
	Next *quiz.Question
}

// Answer scores a submission against the current question, records the
// result, and tries to generate the next question.
func (s *Sessions) Answer(ctx context.Context, id string, userAnswer float64) (AnswerOutcome, error) {
	sess, err := s.Get(id)
	if err != nil {
		return AnswerOutcome{}, err
	}

	sess.mu.Lock()
	if sess.status != statusActive {
		sess.mu.Unlock()
		return AnswerOutcome{}, ErrGameEnded
	}
	if !sess.hasQuestion {
		sess.mu.Unlock()
		return AnswerOutcome{}, errNoQuestion
	}

	accuracy := quiz.Score(userAnswer, sess.question.CorrectAnswer)
	result := quiz.AnswerResult{
		Question:      sess.question.Prompt(),
		UserAnswer:    userAnswer,
		CorrectAnswer: sess.question.CorrectAnswer,
		Accuracy:      accuracy,
	}
	sess.results = append(sess.results, result)
	count := len(sess.results)
	// The question is consumed: a resubmission cannot double-record it.
	sess.hasQuestion = false
	sess.mu.Unlock()

	outcome := AnswerOutcome{
		Result:        result,
		Badge:         quiz.BadgeFor(accuracy),
		QuestionCount: count,
	}

	next, err := s.nextQuestion(ctx, sess)
	switch {
	case errors.Is(err, errStaleQuestion) || errors.Is(err, ErrGameEnded):
		// Game ended (or a newer question won) while we were fetching.
	case err != nil:
		s.logger.Error("generating next question", "session", sess.ID, "error", err)
	default:
		outcome.Next = &next
	}

	return outcome, nil
}

// NextQuestion re-issues question generation after a rate failure.
func (s *Sessions) NextQuestion(ctx context.Context, id string) (quiz.Question, error) {
	sess, err := s.Get(id)
	if err != nil {
		return quiz.Question{}, err
	}
	return s.nextQuestion(ctx, sess)
}

// nextQuestion picks a direction, fetches a snapshot outside the session
// lock, and installs the generated question unless it was superseded.
func (s *Sessions) nextQuestion(ctx context.Context, sess *Session) (quiz.Question, error) {
	sess.mu.Lock()
	if sess.status != statusActive {
		sess.mu.Unlock()
		return quiz.Question{}, ErrGameEnded
	}
	from, to := sess.gen.PickDirection(sess.cfg.BaseCurrency, sess.cfg.TargetCurrency, sess.cfg.ReverseMode)
	sess.seq++
	seq := sess.seq
	sess.mu.Unlock()

	snap, err := s.rates.Latest(ctx, from)
	if err != nil {
		return quiz.Question{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.status != statusActive {
		return quiz.Question{}, ErrGameEnded
	}
	if sess.seq != seq {
		return quiz.Question{}, errStaleQuestion
	}

	q, err := sess.gen.Generate(from, to, snap)
	if err != nil {
		return quiz.Question{}, err
	}
	sess.question = q
	sess.hasQuestion = true
	return q, nil
}

// State is a point-in-time view of a session.
type State struct {
	Status        string
	TimeRemaining int
	FreePlay      bool
	QuestionCount int
	Question      *quiz.Question
	Results       []quiz.AnswerResult
}

func (s *Sessions) State(id string) (State, error) {
	sess, err := s.Get(id)
	if err != nil {
		return State{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	st := State{
		Status:        sess.status,
		TimeRemaining: sess.remaining,
		FreePlay:      sess.cfg.freePlay(),
		QuestionCount: len(sess.results),
		Results:       append([]quiz.AnswerResult(nil), sess.results...),
	}
	if sess.hasQuestion && sess.status == statusActive {
		q := sess.question
		st.Question = &q
	}
	return st, nil
}

// Stop ends the game (if still running), removes the session, and returns
// the finalized record. Idempotent with respect to a natural timer end.
func (s *Sessions) Stop(ctx context.Context, id string) (quiz.GameRecord, error) {
	sess, err := s.Get(id)
	if err != nil {
		return quiz.GameRecord{}, err
	}

	sess.mu.Lock()
	s.endLocked(ctx, sess)
	rec := *sess.record
	sess.mu.Unlock()

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	return rec, nil
}

// endLocked finalizes the session: cancels the countdown, builds the game
// record, and appends it to history when at least one question was answered.
// This is the single release path for the timer; safe to call twice.
func (s *Sessions) endLocked(ctx context.Context, sess *Session) {
	if sess.status == statusEnded {
		return
	}
	sess.status = statusEnded
	sess.hasQuestion = false

	if sess.stopTimer != nil {
		sess.stopTimer()
	}

	var duration int
	if sess.cfg.freePlay() {
		duration = int(math.Round(time.Since(sess.startedAt).Seconds()))
	} else {
		duration = sess.cfg.TimerSeconds - sess.remaining
	}

	var accuracySum float64
	for _, r := range sess.results {
		accuracySum += r.Accuracy
	}
	rec := quiz.GameRecord{
		Date:              time.Now().UTC(),
		BaseCurrency:      sess.cfg.BaseCurrency,
		TargetCurrency:    sess.cfg.TargetCurrency,
		QuestionsAnswered: len(sess.results),
		DurationSeconds:   duration,
		FreePlay:          sess.cfg.freePlay(),
		ReverseMode:       sess.cfg.ReverseMode,
		Results:           append([]quiz.AnswerResult(nil), sess.results...),
	}
	if len(sess.results) > 0 {
		rec.Accuracy = accuracySum / float64(len(sess.results))
		if err := s.history.Append(ctx, rec); err != nil {
			s.logger.Error("saving game to history", "session", sess.ID, "error", err)
		}
	}
	sess.record = &rec
}

// runTimer drives the countdown: one decrement per tick, game over at zero.
func (s *Sessions) runTimer(ctx context.Context, sess *Session) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sess.mu.Lock()
			if sess.status != statusActive {
				sess.mu.Unlock()
				return
			}
			sess.remaining--
			remaining := sess.remaining
			ended := remaining <= 0
			if ended {
				s.endLocked(context.Background(), sess)
			}
			sess.mu.Unlock()

			if ended {
				s.broker.Publish(sess.ID, Event{Type: "game_ended"})
				return
			}
			s.broker.Publish(sess.ID, Event{Type: "timer_tick", TimeRemaining: remaining})
		}
	}
}

func newSessionID() string {
	b := make([]byte, 16)
	cryptorand.Read(b)
	return hex.EncodeToString(b)
}
