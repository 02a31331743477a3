// Package pricing implements the default price source for rentals: a tiered
// month/week/day breakdown over the machine's snapshot rates. The lifecycle
// consumes it through the PricingPort interface and stores whatever it
// returns.
package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/junusg25/kamer-modul-sub006/internal/domain"
	"github.com/junusg25/kamer-modul-sub006/internal/service"
)

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Quote prices a date window. Both the start and end dates are billed. An
// open-ended window is quoted at the daily rate with a zero total; the
// total accrues until the machine comes back and is settled outside this
// port.
func (e *Engine) Quote(ctx context.Context, m *domain.Machine, start time.Time, end *time.Time, customerID int32) (*service.PriceQuote, error) {
	dayRate := m.RateDayCents
	weekRate := m.RateWeekCents
	if weekRate == 0 {
		weekRate = 7 * dayRate
	}
	monthRate := m.RateMonthCents
	if monthRate == 0 {
		monthRate = 30 * dayRate
	}

	if end == nil {
		return &service.PriceQuote{
			RateCents:     dayRate,
			BillingPeriod: domain.BillingPeriodDay,
			TotalCents:    0,
		}, nil
	}

	diff, err := dateDifference(start, *end)
	if err != nil {
		return nil, err
	}

	weeks := int32(diff.Days / 7)
	days := int32(diff.Days % 7)
	total := int32(diff.Months)*monthRate + weeks*weekRate + days*dayRate

	quote := &service.PriceQuote{TotalCents: total}
	switch {
	case diff.Months > 0:
		quote.BillingPeriod = domain.BillingPeriodMonth
		quote.RateCents = monthRate
	case weeks > 0:
		quote.BillingPeriod = domain.BillingPeriodWeek
		quote.RateCents = weekRate
	default:
		quote.BillingPeriod = domain.BillingPeriodDay
		quote.RateCents = dayRate
	}
	return quote, nil
}

type dateDiff struct {
	Months int
	Days   int
}

// dateDifference computes the calendar difference between two dates with
// both endpoints included, borrowing days from months the way a billing
// clerk would.
func dateDifference(start, end time.Time) (dateDiff, error) {
	if end.Before(start) {
		return dateDiff{}, fmt.Errorf("end date must be on or after start date")
	}

	years := end.Year() - start.Year()
	months := int(end.Month()) - int(start.Month())
	days := end.Day() - start.Day() + 1 // +1 to include both ends

	if days < 0 {
		months--
		prevMonth := end.Month() - 1
		prevYear := end.Year()
		if prevMonth < 1 {
			prevMonth = 12
			prevYear--
		}
		days += daysInMonth(prevYear, prevMonth)
	}
	if months < 0 {
		years--
		months += 12
	}
	months += 12 * years

	return dateDiff{Months: months, Days: days}, nil
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
