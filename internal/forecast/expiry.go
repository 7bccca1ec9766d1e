package forecast

import (
	"fmt"
	"math"
	"strings"
	"time"

	pkgerrors "relief-ops/pkg/errors"
)

// ExpiryDateLayout inventory expiry date format
const ExpiryDateLayout = "2006-01-02"

// DefaultDaysThreshold look-ahead window when none is configured
const DefaultDaysThreshold = 7

// urgentDays units expiring within this many days are URGENT
const urgentDays = 3

// DaysUntil whole calendar days from today to an expiry date, both taken in
// today's location. Rounding absorbs 23h and 25h days around DST changes.
func DaysUntil(expiresOn string, today time.Time) (int, error) {
	loc := today.Location()
	expires, err := time.ParseInLocation(ExpiryDateLayout, strings.TrimSpace(expiresOn), loc)
	if err != nil {
		return 0, err
	}
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return int(math.Round(expires.Sub(start).Hours() / 24)), nil
}

// ScanExpiry lists units expiring within daysThreshold days of today.
// Units without an expiry date are ignored; unparsable dates are excluded
// and reported in issues. A negative threshold falls back to the default.
func ScanExpiry(units []InventoryUnit, daysThreshold int, today time.Time) (risks []ExpiryRisk, issues []error) {
	if daysThreshold < 0 {
		daysThreshold = DefaultDaysThreshold
	}
	for _, u := range units {
		raw := strings.TrimSpace(u.ExpiresOn)
		if raw == "" {
			continue
		}
		daysLeft, err := DaysUntil(raw, today)
		if err != nil {
			issues = append(issues, fmt.Errorf("%w: unit %s %q", pkgerrors.ErrMalformedExpiryDate, u.UnitID, u.ExpiresOn))
			continue
		}
		if daysLeft < 0 || daysLeft > daysThreshold {
			continue
		}

		status := ExpiryWarning
		if daysLeft <= urgentDays {
			status = ExpiryUrgent
		}
		risks = append(risks, ExpiryRisk{
			UnitID:    u.UnitID,
			Region:    u.Region,
			Country:   u.Country,
			BloodType: u.BloodType,
			Units:     u.Units,
			ExpiresOn: raw,
			DaysLeft:  daysLeft,
			Status:    status,
		})
	}
	return risks, issues
}

// SummarizeExpiry counts risks by status
func SummarizeExpiry(risks []ExpiryRisk) ExpirySummary {
	var s ExpirySummary
	for _, r := range risks {
		if r.Status == ExpiryUrgent {
			s.Urgent++
		} else {
			s.Warning++
		}
	}
	return s
}
