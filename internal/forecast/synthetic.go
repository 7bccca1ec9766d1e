package forecast

import (
	"math/rand/v2"
)

// UsageRate blood units used per 1000 people affected
type UsageRate struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// DisasterTypes canonical disaster types known to the synthetic prior, in draw order
var DisasterTypes = []string{
	"Earthquake", "Flood", "Storm", "Epidemic", "Drought", "Landslide", "Wildfire",
}

// UsageRates documented per-type usage ranges
var UsageRates = map[string]UsageRate{
	"Earthquake": {Min: 50, Max: 200, Avg: 125},
	"Flood":      {Min: 20, Max: 80, Avg: 50},
	"Storm":      {Min: 30, Max: 100, Avg: 65},
	"Epidemic":   {Min: 10, Max: 40, Avg: 25},
	"Drought":    {Min: 5, Max: 20, Avg: 12},
	"Landslide":  {Min: 40, Max: 150, Avg: 95},
	"Wildfire":   {Min: 25, Max: 90, Avg: 57},
}

// PriorRegions regions drawn by the synthetic prior
var PriorRegions = []string{
	"Southeast Asia", "East Asia", "South Asia", "Central Asia", "Western Asia",
}

// MinUnits floor applied to every historical and predicted demand
const MinUnits = 5

// Sample one synthetic historical event
type Sample struct {
	DisasterType string
	Region       string
	Population   float64 // thousands affected
	Severity     int     // 1-5
	Season       int     // 0-3
	Units        float64
}

// SyntheticPrior draws n historical events. The same seed always yields the same table.
//
// units = pop × avg_rate / 1000 × severity / 3 × U(0.8, 1.2), truncated and floored at MinUnits.
func SyntheticPrior(n int, seed uint64) []Sample {
	r := rand.New(rand.NewPCG(seed, seed))
	samples := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		disaster := DisasterTypes[r.IntN(len(DisasterTypes))]
		region := PriorRegions[r.IntN(len(PriorRegions))]
		pop := 1 + r.Float64()*99
		severity := 1 + r.IntN(5)
		season := r.IntN(4)

		rate := UsageRates[disaster].Avg
		variance := 0.8 + r.Float64()*0.4
		units := int(pop * rate / 1000 * float64(severity) / 3 * variance)
		if units < MinUnits {
			units = MinUnits
		}

		samples = append(samples, Sample{
			DisasterType: disaster,
			Region:       region,
			Population:   pop,
			Severity:     severity,
			Season:       season,
			Units:        float64(units),
		})
	}
	return samples
}
