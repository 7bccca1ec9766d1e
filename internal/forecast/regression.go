package forecast

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// baseFeatures intercept, pop×severity, pop, severity, season
const baseFeatures = 5

// featureCount base features plus one effect-coded column per prior region but the last
var featureCount = baseFeatures + len(PriorRegions) - 1

var (
	ErrNoSamples     = errors.New("no training samples")
	ErrSingularModel = errors.New("training data does not determine the model")
	ErrPoorFit       = errors.New("model fit below required explained variance")
)

// features builds one design row. Regions are effect coded: the last prior
// region is -1 in every region column and an unseen region is all zeros,
// i.e. the average regional effect.
func features(region string, pop float64, severity, season int) []float64 {
	s := float64(severity)
	x := make([]float64, featureCount)
	x[0], x[1], x[2], x[3], x[4] = 1, pop*s, pop, s, float64(season)

	last := len(PriorRegions) - 1
	for i, r := range PriorRegions {
		if !strings.EqualFold(r, strings.TrimSpace(region)) {
			continue
		}
		if i == last {
			for j := 0; j < last; j++ {
				x[baseFeatures+j] = -1
			}
		} else {
			x[baseFeatures+i] = 1
		}
		break
	}
	return x
}

// Model per-disaster-type least squares regression over the event features
type Model struct {
	Coefficients map[string][]float64 `json:"coefficients"`
	R2           float64              `json:"r2"`
	Samples      int                  `json:"samples"`
	TrainedAt    time.Time            `json:"trained_at"`
}

// Train fits one linear model per disaster type by QR least squares, then
// scores the explained variance over all samples.
func Train(samples []Sample, trainedAt time.Time) (*Model, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	byType := make(map[string][]Sample)
	for _, s := range samples {
		byType[s.DisasterType] = append(byType[s.DisasterType], s)
	}

	m := &Model{
		Coefficients: make(map[string][]float64, len(byType)),
		Samples:      len(samples),
		TrainedAt:    trainedAt,
	}
	for disaster, rows := range byType {
		if len(rows) < featureCount {
			return nil, fmt.Errorf("%w: %s has %d samples", ErrSingularModel, disaster, len(rows))
		}
		x := mat.NewDense(len(rows), featureCount, nil)
		y := mat.NewVecDense(len(rows), nil)
		for i, s := range rows {
			x.SetRow(i, features(s.Region, s.Population, s.Severity, s.Season))
			y.SetVec(i, s.Units)
		}

		var beta mat.VecDense
		if err := beta.SolveVec(x, y); err != nil {
			// mat.Condition: rank deficient or too ill-conditioned to trust
			return nil, fmt.Errorf("%w: %s: %v", ErrSingularModel, disaster, err)
		}
		m.Coefficients[disaster] = mat.Col(nil, 0, &beta)
	}

	m.R2 = m.score(samples)
	return m, nil
}

// score coefficient of determination over samples
func (m *Model) score(samples []Sample) float64 {
	estimates := make([]float64, len(samples))
	values := make([]float64, len(samples))
	for i, s := range samples {
		estimates[i], _ = m.Predict(s.DisasterType, s.Region, s.Population, s.Severity, s.Season)
		values[i] = s.Units
	}
	if stat.Variance(values, nil) == 0 {
		return 1
	}
	return stat.RSquaredFrom(estimates, values, nil)
}

// Validate checks the model is complete and fits at least minR2
func (m *Model) Validate(minR2 float64) error {
	if m == nil || len(m.Coefficients) == 0 {
		return ErrNoSamples
	}
	for disaster, beta := range m.Coefficients {
		if len(beta) != featureCount {
			return fmt.Errorf("%w: %s has %d coefficients", ErrSingularModel, disaster, len(beta))
		}
	}
	if math.IsNaN(m.R2) || m.R2 < minR2 {
		return fmt.Errorf("%w: r2=%.3f < %.3f", ErrPoorFit, m.R2, minR2)
	}
	return nil
}

// Resolve returns the canonical disaster type matching name, ignoring case
func (m *Model) Resolve(name string) (string, bool) {
	if _, ok := m.Coefficients[name]; ok {
		return name, true
	}
	for disaster := range m.Coefficients {
		if strings.EqualFold(disaster, strings.TrimSpace(name)) {
			return disaster, true
		}
	}
	return "", false
}

// Predict raw model output for a canonical disaster type
func (m *Model) Predict(disasterType, region string, pop float64, severity, season int) (float64, bool) {
	beta, ok := m.Coefficients[disasterType]
	if !ok || len(beta) != featureCount {
		return 0, false
	}
	return dot(beta, features(region, pop, severity, season)), true
}

func dot(a, b []float64) float64 {
	return mat.Dot(mat.NewVecDense(len(a), a), mat.NewVecDense(len(b), b))
}
