package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/fxplay/currencyquiz/internal/history"
	"github.com/fxplay/currencyquiz/internal/quiz"
	"github.com/fxplay/currencyquiz/internal/storage"
)

// stubRates serves a fixed snapshot per base currency and can be switched
// into failure mode mid-test.
type stubRates struct {
	mu    sync.Mutex
	snaps map[string]quiz.Snapshot
	fail  bool
	calls int
}

func newStubRates() *stubRates {
	return &stubRates{
		snaps: map[string]quiz.Snapshot{
			"USD": {"USD": 1, "EUR": 0.9, "JPY": 150},
			"EUR": {"EUR": 1, "USD": 1.11, "JPY": 166},
			"JPY": {"JPY": 1, "USD": 0.0066, "EUR": 0.006},
		},
	}
}

func (s *stubRates) Latest(_ context.Context, base string) (quiz.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail {
		return nil, quiz.ErrRateUnavailable
	}
	snap, ok := s.snaps[base]
	if !ok {
		return nil, quiz.ErrRateUnavailable
	}
	return snap, nil
}

func (s *stubRates) setFail(fail bool) {
	s.mu.Lock()
	s.fail = fail
	s.mu.Unlock()
}

// gatedRates parks one Latest call (by call number) until released, so
// tests can hold a rate fetch in flight while newer questions are issued.
type gatedRates struct {
	inner    *stubRates
	holdCall int
	entered  chan struct{}
	release  chan struct{}

	mu    sync.Mutex
	calls int
}

func newGatedRates(holdCall int) *gatedRates {
	return &gatedRates{
		inner:    newStubRates(),
		holdCall: holdCall,
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (g *gatedRates) Latest(ctx context.Context, base string) (quiz.Snapshot, error) {
	g.mu.Lock()
	g.calls++
	held := g.calls == g.holdCall
	g.mu.Unlock()

	if held {
		close(g.entered)
		<-g.release
	}
	return g.inner.Latest(ctx, base)
}

func newTestSessions(t *testing.T, rates RateSource) (*Sessions, *history.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hist := history.NewStore(storage.NewMemory(), logger)
	s := NewSessions(rates, hist, NewBroker(), logger)
	s.newRand = func() *rand.Rand {
		return rand.New(rand.NewPCG(7, 11))
	}
	return s, hist
}

func TestStartIssuesFirstQuestion(t *testing.T) {
	sessions, _ := newTestSessions(t, newStubRates())

	sess, q, err := sessions.Start(context.Background(), GameConfig{
		BaseCurrency:   "USD",
		TargetCurrency: "EUR",
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.ID == "" {
		t.Error("session ID is empty")
	}
	if q.Amount <= 0 {
		t.Errorf("question amount = %v, want > 0", q.Amount)
	}
	if q.CorrectAnswer <= 0 {
		t.Errorf("correct answer = %v, want > 0", q.CorrectAnswer)
	}

	got, err := sessions.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get after Start: %v", err)
	}
	if got != sess {
		t.Error("Get returned a different session")
	}
}

func TestStartFailsWhenRatesUnavailable(t *testing.T) {
	rates := newStubRates()
	rates.setFail(true)
	sessions, _ := newTestSessions(t, rates)

	_, _, err := sessions.Start(context.Background(), GameConfig{
		BaseCurrency:   "USD",
		TargetCurrency: "EUR",
	})
	if !errors.Is(err, quiz.ErrRateUnavailable) {
		t.Fatalf("Start error = %v, want ErrRateUnavailable", err)
	}
}

func TestAnswerScoresAndAdvances(t *testing.T) {
	sessions, _ := newTestSessions(t, newStubRates())

	sess, q, err := sessions.Start(context.Background(), GameConfig{
		BaseCurrency:   "USD",
		TargetCurrency: "EUR",
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	outcome, err := sessions.Answer(context.Background(), sess.ID, q.CorrectAnswer)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if outcome.Result.Accuracy != 100 {
		t.Errorf("exact answer accuracy = %v, want 100", outcome.Result.Accuracy)
	}
	if outcome.Badge != quiz.BadgeDiamond {
		t.Errorf("exact answer badge = %v, want %v", outcome.Badge, quiz.BadgeDiamond)
	}
	if outcome.QuestionCount != 1 {
		t.Errorf("question count = %d, want 1", outcome.QuestionCount)
	}
	if outcome.Next == nil {
		t.Fatal("expected a next question")
	}

	st, err := sessions.State(sess.ID)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st.QuestionCount != 1 {
		t.Errorf("state question count = %d, want 1", st.QuestionCount)
	}
	if st.Question == nil {
		t.Fatal("state has no current question")
	}
	if *st.Question != *outcome.Next {
		t.Error("state question does not match the issued next question")
	}
}

func TestAnswerWithoutNextQuestionWhenRatesFail(t *testing.T) {
	rates := newStubRates()
	sessions, _ := newTestSessions(t, rates)

	sess, q, err := sessions.Start(context.Background(), GameConfig{
		BaseCurrency:   "USD",
		TargetCurrency: "EUR",
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	rates.setFail(true)
	outcome, err := sessions.Answer(context.Background(), sess.ID, q.CorrectAnswer)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if outcome.Next != nil {
		t.Error("expected no next question when rates are unavailable")
	}
	// The recorded result must survive the failed fetch.
	if outcome.QuestionCount != 1 {
		t.Errorf("question count = %d, want 1", outcome.QuestionCount)
	}

	// Recovery re-issues a question.
	rates.setFail(false)
	next, err := sessions.NextQuestion(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	if next.Amount <= 0 {
		t.Errorf("re-issued amount = %v, want > 0", next.Amount)
	}
}

func TestAnswerConsumesQuestion(t *testing.T) {
	rates := newStubRates()
	sessions, _ := newTestSessions(t, rates)

	sess, q, err := sessions.Start(context.Background(), GameConfig{
		BaseCurrency:   "USD",
		TargetCurrency: "EUR",
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Fail the follow-up fetch so no next question replaces the scored one.
	rates.setFail(true)
	if _, err := sessions.Answer(context.Background(), sess.ID, q.CorrectAnswer); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	// Resubmitting the same answer must not double-record it.
	_, err = sessions.Answer(context.Background(), sess.ID, q.CorrectAnswer)
	if !errors.Is(err, errNoQuestion) {
		t.Fatalf("resubmission error = %v, want errNoQuestion", err)
	}

	st, err := sessions.State(sess.ID)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st.QuestionCount != 1 {
		t.Errorf("question count = %d, want 1", st.QuestionCount)
	}
	if st.Question != nil {
		t.Error("consumed question still exposed in state")
	}

	// Re-issuing restores normal play.
	rates.setFail(false)
	next, err := sessions.NextQuestion(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	if _, err := sessions.Answer(context.Background(), sess.ID, next.CorrectAnswer); err != nil {
		t.Fatalf("Answer after re-issue: %v", err)
	}
}

func TestStopBuildsRecordAndAppendsHistory(t *testing.T) {
	sessions, hist := newTestSessions(t, newStubRates())

	sess, q, err := sessions.Start(context.Background(), GameConfig{
		BaseCurrency:   "USD",
		TargetCurrency: "EUR",
		TimerSeconds:   60,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := sessions.Answer(context.Background(), sess.ID, q.CorrectAnswer); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	rec, err := sessions.Stop(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if rec.QuestionsAnswered != 1 {
		t.Errorf("questions answered = %d, want 1", rec.QuestionsAnswered)
	}
	if rec.Accuracy != 100 {
		t.Errorf("record accuracy = %v, want 100", rec.Accuracy)
	}
	if rec.FreePlay {
		t.Error("timed game recorded as free play")
	}
	if rec.BaseCurrency != "USD" || rec.TargetCurrency != "EUR" {
		t.Errorf("record pair = %s/%s, want USD/EUR", rec.BaseCurrency, rec.TargetCurrency)
	}

	records, err := hist.All(context.Background())
	if err != nil {
		t.Fatalf("history.All: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("history length = %d, want 1", len(records))
	}

	if _, err := sessions.Get(sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get after Stop error = %v, want ErrSessionNotFound", err)
	}
}

func TestStopWithNoAnswersSkipsHistory(t *testing.T) {
	sessions, hist := newTestSessions(t, newStubRates())

	sess, _, err := sessions.Start(context.Background(), GameConfig{
		BaseCurrency:   "USD",
		TargetCurrency: "EUR",
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	rec, err := sessions.Stop(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if rec.QuestionsAnswered != 0 {
		t.Errorf("questions answered = %d, want 0", rec.QuestionsAnswered)
	}

	records, err := hist.All(context.Background())
	if err != nil {
		t.Fatalf("history.All: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("history length = %d, want 0 for a game with no answers", len(records))
	}
}

func TestAnswerAfterStopFails(t *testing.T) {
	sessions, _ := newTestSessions(t, newStubRates())

	sess, _, err := sessions.Start(context.Background(), GameConfig{
		BaseCurrency:   "USD",
		TargetCurrency: "EUR",
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := sessions.Stop(context.Background(), sess.ID); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	_, err = sessions.Answer(context.Background(), sess.ID, 1)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Answer after Stop error = %v, want ErrSessionNotFound", err)
	}
}

func TestTimerExpiryEndsGame(t *testing.T) {
	sessions, hist := newTestSessions(t, newStubRates())
	sessions.tick = time.Millisecond

	sess, q, err := sessions.Start(context.Background(), GameConfig{
		BaseCurrency:   "USD",
		TargetCurrency: "EUR",
		TimerSeconds:   20,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := sessions.Answer(context.Background(), sess.ID, q.CorrectAnswer); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		st, err := sessions.State(sess.ID)
		if err != nil {
			t.Fatalf("State: %v", err)
		}
		if st.Status == statusEnded {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timer never ended the game")
		case <-time.After(5 * time.Millisecond):
		}
	}

	st, err := sessions.State(sess.ID)
	if err != nil {
		t.Fatalf("State after end: %v", err)
	}
	if st.Question != nil {
		t.Error("ended game still exposes a question")
	}

	records, err := hist.All(context.Background())
	if err != nil {
		t.Fatalf("history.All: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("history length = %d, want 1 after natural end", len(records))
	}
	if records[0].DurationSeconds != 20 {
		t.Errorf("duration = %d, want 20 (full countdown)", records[0].DurationSeconds)
	}

	// Stop after a natural end must not double-append.
	if _, err := sessions.Stop(context.Background(), sess.ID); err != nil {
		t.Fatalf("Stop after natural end: %v", err)
	}
	records, _ = hist.All(context.Background())
	if len(records) != 1 {
		t.Errorf("history length after Stop = %d, want 1", len(records))
	}
}

func TestFreePlayHasNoCountdown(t *testing.T) {
	sessions, _ := newTestSessions(t, newStubRates())
	sessions.tick = time.Millisecond

	sess, _, err := sessions.Start(context.Background(), GameConfig{
		BaseCurrency:   "USD",
		TargetCurrency: "EUR",
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	st, err := sessions.State(sess.ID)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st.Status != statusActive {
		t.Errorf("status = %q, want active", st.Status)
	}
	if !st.FreePlay {
		t.Error("session not marked free play")
	}
	if st.TimeRemaining != 0 {
		t.Errorf("time remaining = %d, want 0 in free play", st.TimeRemaining)
	}
}

func TestUnknownSessionErrors(t *testing.T) {
	sessions, _ := newTestSessions(t, newStubRates())

	if _, err := sessions.Get("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get error = %v, want ErrSessionNotFound", err)
	}
	if _, err := sessions.State("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("State error = %v, want ErrSessionNotFound", err)
	}
	if _, err := sessions.Answer(context.Background(), "nope", 1); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Answer error = %v, want ErrSessionNotFound", err)
	}
	if _, err := sessions.Stop(context.Background(), "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Stop error = %v, want ErrSessionNotFound", err)
	}
}

func TestStaleRateResponseDiscarded(t *testing.T) {
	// Call 1 is the start fetch; call 2 is parked in flight.
	gate := newGatedRates(2)
	sessions, _ := newTestSessions(t, gate)

	sess, _, err := sessions.Start(context.Background(), GameConfig{
		BaseCurrency:   "USD",
		TargetCurrency: "EUR",
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	type reissue struct {
		q   quiz.Question
		err error
	}
	parked := make(chan reissue, 1)
	go func() {
		q, err := sessions.NextQuestion(context.Background(), sess.ID)
		parked <- reissue{q, err}
	}()

	select {
	case <-gate.entered:
	case <-time.After(time.Second):
		t.Fatal("parked fetch never started")
	}

	// A newer question completes while the old fetch is still in flight.
	newer, err := sessions.NextQuestion(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}

	close(gate.release)
	var old reissue
	select {
	case old = <-parked:
	case <-time.After(time.Second):
		t.Fatal("parked fetch never returned")
	}
	if !errors.Is(old.err, errStaleQuestion) {
		t.Errorf("superseded fetch error = %v, want errStaleQuestion", old.err)
	}

	st, err := sessions.State(sess.ID)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st.Question == nil {
		t.Fatal("no current question")
	}
	if *st.Question != newer {
		t.Errorf("current question = %+v, want the newer one %+v", *st.Question, newer)
	}
}

func TestReverseModeSwapsDirection(t *testing.T) {
	sessions, _ := newTestSessions(t, newStubRates())

	sess, _, err := sessions.Start(context.Background(), GameConfig{
		BaseCurrency:   "USD",
		TargetCurrency: "JPY",
		ReverseMode:    true,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// With reverse mode the direction is random per question; across many
	// questions both directions must appear.
	seen := map[string]bool{}
	for range 50 {
		st, err := sessions.State(sess.ID)
		if err != nil {
			t.Fatalf("State: %v", err)
		}
		if st.Question == nil {
			t.Fatal("no current question")
		}
		seen[st.Question.FromCurrency] = true
		if _, err := sessions.Answer(context.Background(), sess.ID, st.Question.CorrectAnswer); err != nil {
			t.Fatalf("Answer: %v", err)
		}
	}
	if !seen["USD"] || !seen["JPY"] {
		t.Errorf("directions seen = %v, want both USD and JPY as source", seen)
	}
}
