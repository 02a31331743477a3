package domain

import "time"

type RentalStatus string

const (
	RentalStatusActive    RentalStatus = "active"
	RentalStatusReserved  RentalStatus = "reserved"
	RentalStatusReturned  RentalStatus = "returned"
	RentalStatusOverdue   RentalStatus = "overdue"
	RentalStatusCancelled RentalStatus = "cancelled"
)

// Terminal reports whether no further transition can happen.
func (s RentalStatus) Terminal() bool {
	return s == RentalStatusReturned || s == RentalStatusCancelled
}

// Occupying reports whether a rental in this status currently holds the
// machine. An overdue rental is an active rental past its planned return,
// so it occupies the machine exactly like an active one.
func (s RentalStatus) Occupying() bool {
	return s == RentalStatusActive || s == RentalStatusOverdue
}

type BillingPeriod string

const (
	BillingPeriodDay   BillingPeriod = "day"
	BillingPeriodWeek  BillingPeriod = "week"
	BillingPeriodMonth BillingPeriod = "month"
)

// Rental binds a machine to a customer for a date window.
type Rental struct {
	ID         int32 `json:"id"`
	MachineID  int32 `json:"machine_id"`
	CustomerID int32 `json:"customer_id"`

	StartDate         time.Time  `json:"start_date"`
	PlannedReturnDate *time.Time `json:"planned_return_date,omitempty"`
	EndDate           *time.Time `json:"end_date,omitempty"` // actual return

	Status RentalStatus `json:"status"`

	// Billing snapshot, populated from the pricing port at creation.
	BillingPeriod BillingPeriod `json:"billing_period"`
	RateCents     int32         `json:"rate_cents"`
	TotalCents    int32         `json:"total_cents"`

	Notes     string    `json:"notes"`
	CreatedBy *int32    `json:"created_by,omitempty"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// EffectiveReturnDate is the actual return date if the rental ended, else
// the contractual planned return. Nil means the window is open-ended.
func (r *Rental) EffectiveReturnDate() *time.Time {
	if r.EndDate != nil {
		return r.EndDate
	}
	return r.PlannedReturnDate
}

// Classify derives the display status of a rental as of a given instant.
// It is the only place "overdue" is computed; the persisted status stays
// authoritative for everything else.
func Classify(r *Rental, asOf time.Time) RentalStatus {
	if r.Status == RentalStatusActive && r.PlannedReturnDate != nil && r.PlannedReturnDate.Before(TruncateToDay(asOf)) {
		return RentalStatusOverdue
	}
	return r.Status
}

// Overlaps reports whether two date windows conflict. A nil end means the
// window is open-ended. Touching boundaries do not conflict: a window may
// start on the exact day another one ends.
func Overlaps(aStart time.Time, aEnd *time.Time, bStart time.Time, bEnd *time.Time) bool {
	if aEnd != nil && !bStart.Before(*aEnd) {
		return false
	}
	if bEnd != nil && !aStart.Before(*bEnd) {
		return false
	}
	return true
}

// TruncateToDay drops the time-of-day component. Rental windows are
// date-granular.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
