package quiz

import "math"

// Score compares a submitted answer against the correct one and returns an
// accuracy percentage in [0, 100]. A zero correct answer is not reachable
// with positive amounts and rates; it degrades to 0 rather than dividing.
func Score(userAnswer, correctAnswer float64) float64 {
	if correctAnswer == 0 {
		return 0
	}
	return math.Max(0, 100-math.Abs(userAnswer-correctAnswer)/correctAnswer*100)
}

// Badge is the rank awarded for an accuracy value.
type Badge string

const (
	BadgeDiamond  Badge = "Diamond"
	BadgePlatinum Badge = "Platinum"
	BadgeGold     Badge = "Gold"
	BadgeSilver   Badge = "Silver"
	BadgeBronze   Badge = "Bronze"
)

// One table drives both the rank name and the display class, so the
// breakpoints cannot drift apart.
var badgeTiers = []struct {
	min   float64
	badge Badge
	class string
}{
	{98, BadgeDiamond, "badge-diamond"},
	{95, BadgePlatinum, "badge-platinum"},
	{90, BadgeGold, "badge-gold"},
	{80, BadgeSilver, "badge-silver"},
	{0, BadgeBronze, "badge-bronze"},
}

// BadgeFor maps an accuracy percentage to its rank.
func BadgeFor(accuracy float64) Badge {
	for _, t := range badgeTiers {
		if accuracy >= t.min {
			return t.badge
		}
	}
	return BadgeBronze
}

// Class returns the display class for the badge.
func (b Badge) Class() string {
	for _, t := range badgeTiers {
		if t.badge == b {
			return t.class
		}
	}
	return "badge-bronze"
}
