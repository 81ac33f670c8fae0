// Package stress applies market stress scenarios to portfolios and attributes
// the resulting impact to positions, asset classes and risk factors.
package stress

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aristath/sentinel-stress/internal/domain"
	"github.com/aristath/sentinel-stress/internal/modules/classification"
	"github.com/aristath/sentinel-stress/internal/modules/risk"
	"github.com/aristath/sentinel-stress/internal/modules/sensitivity"
	"github.com/rs/zerolog"
)

// DefaultVolatilityAmplification scales a scenario's volatility change into a
// uniform multiplier on factor contributions: 1 + volatility/100 × coefficient.
const DefaultVolatilityAmplification = 0.1

// DefaultParallelThreshold is the portfolio size from which positions are evaluated concurrently
const DefaultParallelThreshold = 256

// Config tunes the engine
type Config struct {
	VolatilityAmplification float64
	// Workers is the pool size for parallel evaluation, 0 means runtime.NumCPU
	Workers           int
	ParallelThreshold int
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		VolatilityAmplification: DefaultVolatilityAmplification,
		ParallelThreshold:       DefaultParallelThreshold,
	}
}

// Engine applies scenarios to portfolios.
// It holds no per-run state and is safe for concurrent use.
type Engine struct {
	classifier *classification.Classifier
	calculator *sensitivity.Calculator
	pool       *workerPool
	cfg        Config
	log        zerolog.Logger
}

// NewEngine creates a stress engine
func NewEngine(classifier *classification.Classifier, calculator *sensitivity.Calculator, cfg Config, log zerolog.Logger) *Engine {
	if cfg.ParallelThreshold <= 0 {
		cfg.ParallelThreshold = DefaultParallelThreshold
	}
	return &Engine{
		classifier: classifier,
		calculator: calculator,
		pool:       newWorkerPool(cfg.Workers),
		cfg:        cfg,
		log:        log.With().Str("service", "stress_engine").Logger(),
	}
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Calculator returns the sensitivity calculator in use
func (e *Engine) Calculator() *sensitivity.Calculator {
	return e.calculator
}

// positionEval is the unaggregated outcome of one position
type positionEval struct {
	result      PositionResult
	unamplified float64
}

// Run applies the scenario to the portfolio. It fails with ErrInvalidScenario,
// ErrInvalidPosition or ErrEmptyPortfolio before any position is evaluated.
func (e *Engine) Run(portfolio domain.Portfolio, scenario domain.Scenario) (*Result, error) {
	start := time.Now()

	if err := (domain.RunInput{Portfolio: portfolio, Scenario: scenario}).Validate(); err != nil {
		return nil, err
	}
	if len(portfolio.Positions) == 0 {
		return nil, fmt.Errorf("%w: portfolio has no positions", domain.ErrEmptyPortfolio)
	}

	portfolioValue := 0.0
	for _, pos := range portfolio.Positions {
		portfolioValue += pos.CurrentValue()
	}
	if portfolioValue <= 0 || math.IsInf(portfolioValue, 0) {
		return nil, fmt.Errorf("%w: portfolio value is %v", domain.ErrEmptyPortfolio, portfolioValue)
	}

	changes := normalizeChanges(scenario.FactorChanges)
	multiplier := 1 + scenario.FactorChanges.Volatility()/100*e.cfg.VolatilityAmplification
	base := portfolio.Base()

	evaluate := func(pos domain.Position) positionEval {
		return e.evaluate(pos, base, portfolioValue, changes, multiplier)
	}

	var evals []positionEval
	if len(portfolio.Positions) >= e.cfg.ParallelThreshold {
		evals = e.pool.evaluateBatch(portfolio.Positions, evaluate)
	} else {
		evals = make([]positionEval, len(portfolio.Positions))
		for i, pos := range portfolio.Positions {
			evals[i] = evaluate(pos)
		}
	}

	result := aggregate(evals, portfolioValue, multiplier)
	result.ScenarioFactors = copyChanges(scenario.FactorChanges)
	result.TablesVersion = e.calculator.Tables().Version
	result.Greeks = risk.ComputeGreeks(
		result.FactorAttribution[domain.FactorEquity],
		result.FactorAttribution[domain.FactorRates],
		portfolioValue,
		result.TotalImpactPercent,
		scenario.FactorChanges.Volatility(),
	)

	e.log.Debug().
		Str("scenario", scenario.ID).
		Int("positions", len(portfolio.Positions)).
		Float64("portfolio_value", portfolioValue).
		Float64("total_impact_percent", result.TotalImpactPercent).
		Dur("duration", time.Since(start)).
		Msg("Stress run completed")

	return result, nil
}

// evaluate stresses a single position. It must stay free of shared mutable state.
func (e *Engine) evaluate(pos domain.Position, base string, portfolioValue float64, changes map[domain.Factor]float64, multiplier float64) positionEval {
	meta := e.classifier.Classify(pos, base)
	sens := e.calculator.Calculate(meta)
	current := pos.CurrentValue()

	contributions := make(map[domain.Factor]float64, len(domain.Factors))
	impact := 0.0
	unamplified := 0.0
	for _, f := range domain.Factors {
		raw := current * sens[f] * changes[f] / 100
		contribution := raw
		if contribution != 0 {
			contribution *= multiplier
		}
		contributions[f] = contribution
		impact += contribution
		unamplified += raw
	}

	impactPercent := 0.0
	if current > 0 {
		impactPercent = impact / current * 100
	}
	stressedPrice := pos.Price * (1 + impactPercent/100)

	return positionEval{
		result: PositionResult{
			Symbol:                  pos.Symbol,
			Name:                    pos.Name,
			AssetClass:              meta.AssetClass(),
			Quantity:                pos.Quantity,
			Price:                   pos.Price,
			CurrentValue:            current,
			StressedValue:           current + impact,
			ImpactValue:             impact,
			ImpactPercent:           impactPercent,
			Weight:                  current / portfolioValue,
			ContributionToPortfolio: impact / portfolioValue * 100,
			StressedPrice:           stressedPrice,
			PriceChange:             stressedPrice - pos.Price,
			PriceChangePercent:      impactPercent,
			FactorContributions:     contributions,
			Sensitivities:           sens,
			Metadata:                meta,
			RiskProfile:             e.calculator.RiskProfile(meta.AssetClass()),
		},
		unamplified: unamplified,
	}
}

// aggregate sums position results in input order, then orders them for presentation
func aggregate(evals []positionEval, portfolioValue, multiplier float64) *Result {
	attribution := make(map[domain.Factor]float64, len(domain.Factors))
	for _, f := range domain.Factors {
		attribution[f] = 0
	}

	classes := make(map[domain.AssetClass]*AssetClassImpact)
	positions := make([]PositionResult, len(evals))
	impacts := make([]risk.PositionImpact, len(evals))

	totalImpact := 0.0
	unamplified := 0.0
	for i, ev := range evals {
		pr := ev.result
		for _, f := range domain.Factors {
			attribution[f] += pr.FactorContributions[f]
		}
		totalImpact += pr.ImpactValue
		unamplified += ev.unamplified

		class, ok := classes[pr.AssetClass]
		if !ok {
			class = &AssetClassImpact{AssetClass: pr.AssetClass}
			classes[pr.AssetClass] = class
		}
		class.PositionCount++
		class.CurrentValue += pr.CurrentValue
		class.ImpactValue += pr.ImpactValue

		positions[i] = pr
		impacts[i] = risk.PositionImpact{Weight: pr.Weight, ImpactPercent: pr.ImpactPercent}
	}

	classImpacts := make([]AssetClassImpact, 0, len(classes))
	classWeights := make([]float64, 0, len(classes))
	for _, ac := range domain.AssetClasses {
		class, ok := classes[ac]
		if !ok {
			continue
		}
		class.StressedValue = class.CurrentValue + class.ImpactValue
		class.Weight = class.CurrentValue / portfolioValue
		if class.CurrentValue > 0 {
			class.ImpactPercent = class.ImpactValue / class.CurrentValue * 100
		}
		classImpacts = append(classImpacts, *class)
		classWeights = append(classWeights, class.Weight)
	}

	totalImpactPercent := totalImpact / portfolioValue * 100

	metrics := risk.Compute(risk.Input{
		Positions:                impacts,
		AssetClassWeights:        classWeights,
		TotalImpactPercent:       totalImpactPercent,
		UnamplifiedImpactPercent: unamplified / portfolioValue * 100,
	})

	sort.SliceStable(positions, func(i, j int) bool {
		return math.Abs(positions[i].ImpactValue) > math.Abs(positions[j].ImpactValue)
	})

	return &Result{
		PortfolioValue:       portfolioValue,
		StressedValue:        portfolioValue + totalImpact,
		TotalImpact:          totalImpact,
		TotalImpactPercent:   totalImpactPercent,
		AssetClassImpacts:    classImpacts,
		FactorAttribution:    attribution,
		RiskMetrics:          metrics,
		PositionResults:      positions,
		VolatilityMultiplier: multiplier,
	}
}

// normalizeChanges converts basis-point factors to percent-per-100bp units
// and fills omitted value factors with 0.
func normalizeChanges(fc domain.FactorChanges) map[domain.Factor]float64 {
	out := make(map[domain.Factor]float64, len(domain.Factors))
	for _, f := range domain.Factors {
		v := fc.Get(f)
		if f.IsBasisPoints() {
			v /= 100
		}
		out[f] = v
	}
	return out
}

func copyChanges(fc domain.FactorChanges) domain.FactorChanges {
	out := make(domain.FactorChanges, len(fc))
	for f, v := range fc {
		out[f] = v
	}
	return out
}
