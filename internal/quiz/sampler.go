package quiz

import (
	"math"
	"math/rand/v2"
)

// Log-normal parameters for the USD-equivalent prompt amount. Mean 2.0 in
// log space puts the median near $7.40, heavily favoring small amounts.
const (
	minUSDAmount = 0.5
	maxUSDAmount = 500.0
	logMean      = 2.0
	logSigma     = 1.0
)

// boxMuller draws one standard-normal sample from two independent uniforms.
func boxMuller(rng *rand.Rand) float64 {
	// 1-Float64() keeps u1 in (0,1]; ln(0) would blow up the transform.
	u1 := 1 - rng.Float64()
	u2 := rng.Float64()
	return math.Sqrt(-2.0*math.Log(u1)) * math.Cos(2.0*math.Pi*u2)
}

// SampleUSDAmount draws a USD-equivalent magnitude in [0.5, 500] from a
// log-normal distribution.
func SampleUSDAmount(rng *rand.Rand) float64 {
	z := boxMuller(rng)
	amount := math.Exp(z*logSigma + logMean)
	return math.Min(maxUSDAmount, math.Max(minUSDAmount, amount))
}

// RoundToSensible snaps an amount to a precision appropriate to its
// magnitude, so prompts read like real prices (12.5 EUR, 1,500 JPY).
func RoundToSensible(amount float64) float64 {
	switch {
	case amount < 1.0:
		return math.Round(amount*100) / 100
	case amount <= 20.0:
		return math.Round(amount*10) / 10
	case amount < 100.0:
		return math.Round(amount)
	case amount < 1000.0:
		return math.Round(amount/10) * 10
	case amount < 10000.0:
		return math.Round(amount/100) * 100
	default:
		return math.Round(amount/1000) * 1000
	}
}
