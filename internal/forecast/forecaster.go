package forecast

import (
	"fmt"
	"math"
	"sync"
	"time"

	pkgerrors "relief-ops/pkg/errors"
)

// Options forecaster settings
type Options struct {
	RegionPopulations map[string]float64 // thousands affected per region
	DefaultPopulation float64
	TrainingSamples   int
	Seed              uint64
	MinR2             float64
	Now               func() time.Time
}

// Result forecast output of one batch. Skipped holds one error per
// prediction that could not be resolved; the rest of the batch is unaffected.
type Result struct {
	Records []ForecastRecord `json:"records"`
	Skipped []error          `json:"-"`
}

// Forecaster DemandForecaster backed by a regression Model.
// Safe for concurrent use; the model is trained on first use when none was loaded.
type Forecaster struct {
	opts        Options
	populations map[string]float64

	mu    sync.Mutex
	model *Model
}

// NewForecaster creates a forecaster without a model
func NewForecaster(opts Options) *Forecaster {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TrainingSamples <= 0 {
		opts.TrainingSamples = 5000
	}
	if opts.DefaultPopulation <= 0 {
		opts.DefaultPopulation = 40
	}
	pops := make(map[string]float64, len(opts.RegionPopulations))
	for region, pop := range opts.RegionPopulations {
		pops[normalize(region)] = pop
	}
	return &Forecaster{opts: opts, populations: pops}
}

// SetModel installs a previously trained model after validating it
func (f *Forecaster) SetModel(m *Model) error {
	if err := m.Validate(f.opts.MinR2); err != nil {
		return err
	}
	f.mu.Lock()
	f.model = m
	f.mu.Unlock()
	return nil
}

// Model returns the installed model or nil
func (f *Forecaster) Model() *Model {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.model
}

// EnsureModel returns the installed model, training one from the synthetic
// prior when absent. trained reports whether a new model was produced.
func (f *Forecaster) EnsureModel() (m *Model, trained bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.model != nil {
		return f.model, false, nil
	}

	m, err = Train(SyntheticPrior(f.opts.TrainingSamples, f.opts.Seed), f.opts.Now())
	if err != nil {
		return nil, false, err
	}
	if err := m.Validate(f.opts.MinR2); err != nil {
		return nil, false, err
	}
	f.model = m
	return m, true, nil
}

// Population estimate for region in thousands, default when unknown
func (f *Forecaster) Population(region string) float64 {
	if pop, ok := f.populations[normalize(region)]; ok {
		return pop
	}
	return f.opts.DefaultPopulation
}

// Forecast estimates demand for every prediction passing filter.
// Records keep input order and are independent of each other.
func (f *Forecaster) Forecast(preds []DisasterPrediction, filter FilterContext) (Result, error) {
	m, _, err := f.EnsureModel()
	if err != nil {
		return Result{}, err
	}

	season := CurrentSeason(f.opts.Now())
	res := Result{Records: make([]ForecastRecord, 0, len(preds))}
	for i, p := range preds {
		if !filter.MatchPrediction(p) {
			continue
		}
		disaster, ok := m.Resolve(p.DisasterType)
		if !ok {
			res.Skipped = append(res.Skipped, fmt.Errorf("%w: prediction %d disaster type %q",
				pkgerrors.ErrUnresolvableForecastInput, i, p.DisasterType))
			continue
		}
		res.Records = append(res.Records, f.forecastOne(m, disaster, p, season))
	}
	return res, nil
}

func (f *Forecaster) forecastOne(m *Model, disaster string, p DisasterPrediction, season int) ForecastRecord {
	frac := ConfidenceFraction(p.Confidence)
	severity := SeverityFromConfidence(frac)
	pop := f.Population(p.Region)

	raw, _ := m.Predict(disaster, p.Region, pop, severity, season)
	predicted := FloorUnits(raw)

	uncertainty := int(float64(predicted) * (1 - frac) * 0.3)
	rangeMin := predicted - uncertainty
	if rangeMin < MinUnits {
		rangeMin = MinUnits
	}

	return ForecastRecord{
		Region:         p.Region,
		Country:        p.Country,
		DisasterType:   disaster,
		Year:           p.Year,
		Confidence:     frac * 100,
		Severity:       severity,
		Population:     pop,
		PredictedUnits: predicted,
		RangeMin:       rangeMin,
		RangeMax:       predicted + uncertainty,
		AlertLevel:     AlertFor(predicted),
	}
}

// ConfidenceFraction converts a percentage to [0,1]
func ConfidenceFraction(pct float64) float64 {
	return clamp(pct/100, 0, 1)
}

// SeverityFromConfidence higher confidence implies a more severe event
func SeverityFromConfidence(frac float64) int {
	return int(math.Round(clamp(1+frac*4, 1, 5)))
}

// FloorUnits truncates a model output to whole units, never below MinUnits
func FloorUnits(raw float64) int {
	if math.IsNaN(raw) || raw < MinUnits {
		return MinUnits
	}
	return int(raw)
}

// CurrentSeason 0-3 bucket of the calendar month
func CurrentSeason(t time.Time) int {
	return (int(t.Month()) % 12) / 3
}

// AlertFor buckets predicted units
func AlertFor(units int) AlertLevel {
	switch {
	case units >= 100:
		return AlertHigh
	case units >= 50:
		return AlertMedium
	default:
		return AlertLow
	}
}

// Summarize totals a forecast batch
func Summarize(records []ForecastRecord) ForecastSummary {
	var s ForecastSummary
	for _, r := range records {
		s.TotalPredicted += r.PredictedUnits
		if r.AlertLevel == AlertHigh {
			s.HighAlerts++
		}
	}
	if len(records) > 0 {
		s.AveragePerItem = float64(s.TotalPredicted) / float64(len(records))
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
