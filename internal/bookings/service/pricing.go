package service

import (
	"math"
	"strings"
	"time"

	apperrors "bedbook/pkg/errors"
	"bedbook/pkg/model"
)

const (
	dateLayout = "2006-01-02"
	// Daily rates derive from a 30-day month.
	daysPerMonth = 30
)

// parseDate accepts YYYY-MM-DD or RFC3339 and truncates to UTC midnight.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		t, err = time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, err
		}
	}
	return midnight(t), nil
}

func midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

// wholeMonths splits [start, end) into whole calendar months and the days
// left over.
func wholeMonths(start, end time.Time) (int, int) {
	months := 0
	for !start.AddDate(0, months+1, 0).After(end) {
		months++
	}
	return months, daysBetween(start.AddDate(0, months, 0), end)
}

// resolveStay computes [moveIn, moveOut] for a booking request. An explicit
// endDate wins; otherwise the duration spec applies, and +1 month is the
// fallback.
func resolveStay(req *model.BookingRequest) (time.Time, time.Time, error) {
	start, err := parseDate(req.MoveInDate)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.InvalidDateRange("Invalid moveInDate format. Use YYYY-MM-DD.")
	}

	var end time.Time
	switch {
	case req.EndDate != "":
		end, err = parseDate(req.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.InvalidDateRange("Invalid endDate format. Use YYYY-MM-DD.")
		}
	case req.DurationType == model.DurationCustom:
		return time.Time{}, time.Time{}, apperrors.MissingFields([]string{"endDate"})
	case req.DurationType == model.DurationMonthly && req.DurationMonths > 0:
		end = start.AddDate(0, req.DurationMonths, 0)
	case req.DurationType == model.DurationDaily && req.DurationDays > 0:
		end = start.AddDate(0, 0, req.DurationDays)
	default:
		end = start.AddDate(0, 1, 0)
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, apperrors.InvalidDateRange("End date must be after start date.")
	}
	return start, end, nil
}

// computePricing prices bedCount beds of one room type. Non-zero overrides
// replace the computed deposit, advance and maintenance fee.
func computePricing(req *model.BookingRequest, rt model.RoomTypeConfig, bedCount int, start, end time.Time) model.Pricing {
	monthlyRent := rt.Price * float64(bedCount)
	dailyRate := monthlyRent / daysPerMonth

	var totalRent float64
	switch req.DurationType {
	case model.DurationDaily:
		days := req.DurationDays
		if days <= 0 {
			days = daysBetween(start, end)
		}
		totalRent = dailyRate * float64(days)
	case model.DurationCustom:
		totalRent = dailyRate * float64(daysBetween(start, end))
	default:
		if req.DurationMonths > 0 {
			totalRent = monthlyRent * float64(req.DurationMonths)
			break
		}
		months, rest := wholeMonths(start, end)
		totalRent = monthlyRent*float64(months) + dailyRate*float64(rest)
	}

	pricing := model.Pricing{
		MonthlyRent:     model.RoundAmount(monthlyRent),
		TotalRent:       model.RoundAmount(totalRent),
		SecurityDeposit: model.RoundAmount(rt.Deposit * float64(bedCount)),
		AdvanceAmount:   model.RoundAmount(rt.Price),
	}

	if o := req.Pricing; o != nil {
		if o.AdvanceAmount > 0 {
			pricing.AdvanceAmount = model.RoundAmount(o.AdvanceAmount)
		}
		if o.SecurityDeposit > 0 {
			pricing.SecurityDeposit = model.RoundAmount(o.SecurityDeposit)
		}
		if o.MaintenanceFee > 0 {
			pricing.MaintenanceFee = model.RoundAmount(o.MaintenanceFee)
		}
	}

	return pricing
}
