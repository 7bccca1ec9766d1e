package forecast

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	surplusThreshold = decimal.NewFromFloat(0.5)
	regionalBuffer   = decimal.NewFromFloat(0.2)
	hundred          = decimal.NewFromInt(100)
)

// shortageHighPriority shortfall above which a shortage is HIGH priority
const shortageHighPriority = 50

// SupplyByRegion sums inventory units per region (case-insensitive)
func SupplyByRegion(units []InventoryUnit) map[string]int {
	supply := make(map[string]int)
	for _, u := range units {
		supply[normalize(u.Region)] += u.Units
	}
	return supply
}

// Match reconciles forecasts against inventory, both narrowed by filter.
// Output keeps forecast order; pairs with zero supply and zero demand are dropped.
func Match(inventory []InventoryUnit, forecasts []ForecastRecord, filter FilterContext) []MatchRecommendation {
	supply := SupplyByRegion(FilterInventory(inventory, filter))

	recs := make([]MatchRecommendation, 0, len(forecasts))
	for _, fr := range forecasts {
		if !filter.MatchForecast(fr) {
			continue
		}
		rec := Recommend(fr.Region, fr.DisasterType, supply[normalize(fr.Region)], fr.PredictedUnits)
		if rec.CurrentSupply == 0 && rec.PredictedDemand == 0 {
			continue
		}
		recs = append(recs, rec)
	}
	return recs
}

// Recommend classifies one region/event pair
func Recommend(region, disasterType string, supply, demand int) MatchRecommendation {
	balance := supply - demand
	rec := MatchRecommendation{
		Region:          region,
		DisasterType:    disasterType,
		CurrentSupply:   supply,
		PredictedDemand: demand,
		Balance:         balance,
		CoveragePercent: coverage(supply, demand),
	}

	need := decimal.NewFromInt(int64(demand))
	switch {
	case balance < 0:
		shortfall := -balance
		rec.Status = StatusShortage
		rec.Action = fmt.Sprintf("request %d units from surplus regions", shortfall)
		rec.Priority = PriorityMedium
		if shortfall > shortageHighPriority {
			rec.Priority = PriorityHigh
		}
	case decimal.NewFromInt(int64(balance)).GreaterThan(need.Mul(surplusThreshold)):
		surplus := decimal.NewFromInt(int64(balance)).Sub(need.Mul(regionalBuffer)).IntPart()
		if surplus > 0 {
			rec.Status = StatusSurplus
			rec.Action = fmt.Sprintf("offer %d units to shortage regions", surplus)
			rec.Priority = PriorityLow
		} else {
			rec.Status = StatusAdequate
			rec.Action = "no action needed"
			rec.Priority = PriorityNone
		}
	default:
		rec.Status = StatusAdequate
		rec.Action = "monitor closely"
		rec.Priority = PriorityNone
	}
	return rec
}

// coverage supply/demand as a percentage rounded to one decimal, 100 when demand is 0
func coverage(supply, demand int) float64 {
	if demand == 0 {
		return 100
	}
	pct := decimal.NewFromInt(int64(supply)).
		Div(decimal.NewFromInt(int64(demand))).
		Mul(hundred).
		Round(1)
	return pct.InexactFloat64()
}

// SummarizeMatches totals a recommendation list
func SummarizeMatches(recs []MatchRecommendation) MatchSummary {
	var s MatchSummary
	for _, r := range recs {
		s.TotalDemand += r.PredictedDemand
		s.MatchedSupply += r.CurrentSupply
		if r.Status == StatusShortage {
			s.Shortages++
		}
	}
	s.Gap = s.MatchedSupply - s.TotalDemand
	return s
}
