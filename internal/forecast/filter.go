package forecast

import "strings"

// FilterContext narrows predictions and inventory for one forecast or match
// call. The zero value matches everything. Comparisons ignore case and
// surrounding whitespace; a zero year bound is open.
type FilterContext struct {
	DisasterTypes []string `json:"disaster_types,omitempty"`
	Region        string   `json:"region,omitempty"`
	Country       string   `json:"country,omitempty"`
	YearFrom      int      `json:"year_from,omitempty"`
	YearTo        int      `json:"year_to,omitempty"`
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func sameText(a, b string) bool {
	return normalize(a) == normalize(b)
}

func (f FilterContext) matchPlace(region, country string) bool {
	if f.Region != "" && !sameText(f.Region, region) {
		return false
	}
	if f.Country != "" && !sameText(f.Country, country) {
		return false
	}
	return true
}

func (f FilterContext) matchType(disasterType string) bool {
	if len(f.DisasterTypes) == 0 {
		return true
	}
	for _, t := range f.DisasterTypes {
		if sameText(t, disasterType) {
			return true
		}
	}
	return false
}

func (f FilterContext) matchYear(year int) bool {
	if f.YearFrom != 0 && year < f.YearFrom {
		return false
	}
	if f.YearTo != 0 && year > f.YearTo {
		return false
	}
	return true
}

// MatchPrediction reports whether p passes every criterion
func (f FilterContext) MatchPrediction(p DisasterPrediction) bool {
	return f.matchType(p.DisasterType) && f.matchPlace(p.Region, p.Country) && f.matchYear(p.Year)
}

// MatchForecast reports whether r passes every criterion
func (f FilterContext) MatchForecast(r ForecastRecord) bool {
	return f.matchType(r.DisasterType) && f.matchPlace(r.Region, r.Country) && f.matchYear(r.Year)
}

// MatchInventory reports whether u lies in the selected region and country
func (f FilterContext) MatchInventory(u InventoryUnit) bool {
	return f.matchPlace(u.Region, u.Country)
}

// FilterPredictions keeps matching predictions in input order, at most limit (0 = no cap)
func FilterPredictions(preds []DisasterPrediction, f FilterContext, limit int) []DisasterPrediction {
	out := make([]DisasterPrediction, 0, len(preds))
	for _, p := range preds {
		if !f.MatchPrediction(p) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// FilterInventory keeps matching inventory rows in input order
func FilterInventory(units []InventoryUnit, f FilterContext) []InventoryUnit {
	out := make([]InventoryUnit, 0, len(units))
	for _, u := range units {
		if f.MatchInventory(u) {
			out = append(out, u)
		}
	}
	return out
}
