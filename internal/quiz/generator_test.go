package quiz

import (
	"errors"
	"testing"
)

func TestPickDirectionNoReverse(t *testing.T) {
	g := NewGenerator(testRNG())
	for i := 0; i < 100; i++ {
		from, to := g.PickDirection("USD", "EUR", false)
		if from != "USD" || to != "EUR" {
			t.Fatalf("expected USD→EUR, got %s→%s", from, to)
		}
	}
}

func TestPickDirectionReverseSwapsAboutHalf(t *testing.T) {
	g := NewGenerator(testRNG())
	swapped := 0
	const trials = 10000
	for i := 0; i < trials; i++ {
		from, _ := g.PickDirection("USD", "EUR", true)
		if from == "EUR" {
			swapped++
		}
	}
	if swapped < 4700 || swapped > 5300 {
		t.Errorf("expected ~50%% swaps, got %d of %d", swapped, trials)
	}
}

func TestGenerate(t *testing.T) {
	g := NewGenerator(testRNG())
	snap := Snapshot{"EUR": 0.90, "USD": 1.0}

	for i := 0; i < 1000; i++ {
		q, err := g.Generate("USD", "EUR", snap)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if q.FromCurrency != "USD" || q.ToCurrency != "EUR" {
			t.Fatalf("unexpected pair %s→%s", q.FromCurrency, q.ToCurrency)
		}
		if q.Amount <= 0 {
			t.Fatalf("non-positive amount %v", q.Amount)
		}
		if q.Amount != RoundToSensible(q.Amount) {
			t.Fatalf("amount %v not sensibly rounded", q.Amount)
		}
		if want := round2(q.Amount * 0.90); q.CorrectAnswer != want {
			t.Fatalf("correctAnswer = %v, want %v", q.CorrectAnswer, want)
		}
	}
}

func TestGenerateMissingRates(t *testing.T) {
	g := NewGenerator(testRNG())

	if _, err := g.Generate("USD", "EUR", Snapshot{"USD": 1.0}); !errors.Is(err, ErrRateUnavailable) {
		t.Errorf("missing target rate: expected ErrRateUnavailable, got %v", err)
	}
	if _, err := g.Generate("USD", "EUR", Snapshot{"EUR": 0.9}); !errors.Is(err, ErrRateUnavailable) {
		t.Errorf("missing USD rate: expected ErrRateUnavailable, got %v", err)
	}
	if _, err := g.Generate("USD", "EUR", nil); !errors.Is(err, ErrRateUnavailable) {
		t.Errorf("nil snapshot: expected ErrRateUnavailable, got %v", err)
	}
}

// The worked example from the design discussion: a $50 draw converting USD
// to EUR at 0.90 rounds to a 50 USD prompt worth exactly 45.00 EUR.
func TestFiftyDollarScenario(t *testing.T) {
	amount := RoundToSensible(50.0 / 1.0)
	if amount != 50.0 {
		t.Fatalf("rounded amount = %v, want 50", amount)
	}
	correct := round2(amount * 0.90)
	if correct != 45.00 {
		t.Fatalf("correct answer = %v, want 45.00", correct)
	}
	if acc := Score(45.00, correct); acc != 100.0 {
		t.Fatalf("accuracy = %v, want 100", acc)
	}
	if b := BadgeFor(100.0); b != BadgeDiamond {
		t.Fatalf("badge = %v, want Diamond", b)
	}
}

func TestQuestionPrompt(t *testing.T) {
	tests := []struct {
		q    Question
		want string
	}{
		{Question{FromCurrency: "USD", ToCurrency: "EUR", Amount: 50}, "50 USD = ? EUR"},
		{Question{FromCurrency: "JPY", ToCurrency: "USD", Amount: 1500}, "1,500 JPY = ? USD"},
		{Question{FromCurrency: "EUR", ToCurrency: "GBP", Amount: 12.5}, "12.5 EUR = ? GBP"},
		{Question{FromCurrency: "KWD", ToCurrency: "USD", Amount: 0.75}, "0.75 KWD = ? USD"},
		{Question{FromCurrency: "IDR", ToCurrency: "USD", Amount: 1250000}, "1,250,000 IDR = ? USD"},
	}
	for _, tt := range tests {
		if got := tt.q.Prompt(); got != tt.want {
			t.Errorf("Prompt() = %q, want %q", got, tt.want)
		}
	}
}
