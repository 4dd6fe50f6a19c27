package regime

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"
)

// Property: Classify always returns one of the four known regimes, for any
// combination of index metrics, including degenerate inputs.
func TestProperty_ClassifyAlwaysReturnsKnownRegime(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	d := NewDetector(DefaultWeightTable())

	properties.Property("classification is always a valid regime", prop.ForAll(
		func(adx, bbWidth, bbWidthAvg, atrRatio float64) bool {
			return d.Classify(adx, bbWidth, bbWidthAvg, atrRatio).Valid()
		},
		gen.Float64Range(-10, 100),
		gen.Float64Range(-1, 5),
		gen.Float64Range(0, 5),
		gen.Float64Range(-0.01, 0.2),
	))

	properties.TestingRun(t)
}

// Property: For any sequence of raw classifications, the tracker's confirmed
// regime only changes after the same candidate is observed confirmationBars
// times in a row, and every emitted transition records the regime that was
// confirmed before it.
func TestProperty_TrackerNeverConfirmsEarly(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	regimeGen := gen.OneConstOf(Trend, Ranging, HighVolatility, Uncertain)

	properties.Property("confirmed regime changes only after a full streak", prop.ForAll(
		func(raws []Regime, confirmationBars int) bool {
			tracker := NewTracker(confirmationBars, nil, zerolog.Nop())
			confirmed := tracker.Confirmed()
			streak := 0
			var candidate Regime

			for i, raw := range raws {
				transition := tracker.Update(raw, day(i))

				if raw == confirmed {
					streak = 0
					candidate = ""
				} else if raw == candidate {
					streak++
				} else {
					candidate = raw
					streak = 1
				}

				if streak >= confirmationBars {
					if transition == nil || transition.Previous != confirmed || transition.Current != raw {
						return false
					}
					confirmed = raw
					streak = 0
					candidate = ""
				} else if transition != nil {
					return false
				}

				if tracker.Confirmed() != confirmed {
					return false
				}
			}
			return true
		},
		gen.SliceOf(regimeGen),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}

// Property: every row of the default weight table sums to its regime's
// allocation and contains no negative weights.
func TestProperty_WeightTableRowsSumToAllocation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("per-regime sums match the cash buffer rule", prop.ForAll(
		func(r Regime) bool {
			table := DefaultWeightTable()
			var sum float64
			for _, w := range table[r] {
				if w < 0 {
					return false
				}
				sum += w
			}
			expected := 1.00
			if r == Uncertain {
				expected = 0.90
			}
			return sum > expected-1e-9 && sum < expected+1e-9
		},
		gen.OneConstOf(Trend, Ranging, HighVolatility, Uncertain),
	))

	properties.TestingRun(t)
}
