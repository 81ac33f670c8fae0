package stress

import (
	"errors"
	"fmt"
	"math"

	"github.com/aristath/sentinel-stress/internal/domain"
)

// InvariantTolerance is the relative tolerance of CheckInvariants
const InvariantTolerance = 1e-6

// ErrInvariantViolated is wrapped by every CheckInvariants failure
var ErrInvariantViolated = errors.New("stress result invariant violated")

// CheckInvariants verifies the additivity and weight invariants of an
// unrounded result and returns every violation found.
func CheckInvariants(r *Result) error {
	var errs []error
	fail := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvariantViolated, fmt.Sprintf(format, args...)))
	}

	sumImpact := 0.0
	sumWeights := 0.0
	sumContrib := make(map[domain.Factor]float64, len(domain.Factors))
	for _, p := range r.PositionResults {
		sumImpact += p.ImpactValue
		sumWeights += p.Weight
		for _, f := range domain.Factors {
			sumContrib[f] += p.FactorContributions[f]
		}
	}

	if !approxEqual(sumImpact, r.TotalImpact, r.PortfolioValue) {
		fail("position impacts sum to %v, total impact is %v", sumImpact, r.TotalImpact)
	}

	sumAttribution := 0.0
	for _, f := range domain.Factors {
		sumAttribution += r.FactorAttribution[f]
		if !approxEqual(sumContrib[f], r.FactorAttribution[f], r.PortfolioValue) {
			fail("%s contributions sum to %v, attribution is %v", f, sumContrib[f], r.FactorAttribution[f])
		}
	}
	if !approxEqual(sumAttribution, r.TotalImpact, r.PortfolioValue) {
		fail("factor attribution sums to %v, total impact is %v", sumAttribution, r.TotalImpact)
	}

	sumClassValue := 0.0
	for _, c := range r.AssetClassImpacts {
		sumClassValue += c.CurrentValue
	}
	if !approxEqual(sumClassValue, r.PortfolioValue, r.PortfolioValue) {
		fail("asset class values sum to %v, portfolio value is %v", sumClassValue, r.PortfolioValue)
	}

	if r.PortfolioValue > 0 && !approxEqual(sumWeights, 1, 1) {
		fail("position weights sum to %v", sumWeights)
	}

	return errors.Join(errs...)
}

// approxEqual compares a and b relative to scale, falling back to an absolute
// comparison when everything is near zero.
func approxEqual(a, b, scale float64) bool {
	ref := math.Max(math.Max(math.Abs(a), math.Abs(b)), math.Abs(scale))
	if ref < 1 {
		ref = 1
	}
	return math.Abs(a-b) <= InvariantTolerance*ref
}
