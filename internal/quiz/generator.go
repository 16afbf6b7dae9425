package quiz

import (
	"math"
	"math/rand/v2"
)

// Generator produces questions from a seedable random source. Not safe for
// concurrent use; each game session owns its own Generator.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// PickDirection resolves the conversion direction for the next question.
// With reverse mode enabled the pair is swapped with probability 0.5, so the
// caller knows which currency to fetch a snapshot for.
func (g *Generator) PickDirection(base, target string, reverseMode bool) (from, to string) {
	if reverseMode && g.rng.Float64() < 0.5 {
		return target, base
	}
	return base, target
}

// Generate builds a question for the from→to pair using a snapshot based on
// the from currency. The prompt amount is a log-normal USD-equivalent draw
// converted into from-currency units and sensibly rounded.
func (g *Generator) Generate(from, to string, snap Snapshot) (Question, error) {
	rate, ok := snap[to]
	if !ok || rate == 0 {
		return Question{}, ErrRateUnavailable
	}
	usdRate, ok := snap["USD"]
	if !ok || usdRate == 0 {
		return Question{}, ErrRateUnavailable
	}

	usdEquivalent := SampleUSDAmount(g.rng)
	amount := RoundToSensible(usdEquivalent / usdRate)

	return Question{
		FromCurrency:  from,
		ToCurrency:    to,
		Amount:        amount,
		CorrectAnswer: round2(amount * rate),
	}, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
