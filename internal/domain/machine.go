package domain

import "time"

type MachineStatus string

const (
	MachineStatusAvailable   MachineStatus = "available"
	MachineStatusRented      MachineStatus = "rented"
	MachineStatusReserved    MachineStatus = "reserved"
	MachineStatusMaintenance MachineStatus = "maintenance"
	MachineStatusRetired     MachineStatus = "retired"
)

// Administrative reports whether the status was set by an operator rather
// than derived from rental activity. Queue advancement never overwrites
// administrative statuses.
func (s MachineStatus) Administrative() bool {
	return s == MachineStatusMaintenance || s == MachineStatusRetired
}

// LifecycleManaged reports whether the status is owned by the rental
// lifecycle and may not be set directly through the registry.
func (s MachineStatus) LifecycleManaged() bool {
	return s == MachineStatusRented || s == MachineStatusReserved
}

func (s MachineStatus) Valid() bool {
	switch s {
	case MachineStatusAvailable, MachineStatusRented, MachineStatusReserved,
		MachineStatusMaintenance, MachineStatusRetired:
		return true
	}
	return false
}

type MachineCondition string

const (
	MachineConditionExcellent MachineCondition = "excellent"
	MachineConditionGood      MachineCondition = "good"
	MachineConditionFair      MachineCondition = "fair"
	MachineConditionPoor      MachineCondition = "poor"
)

func (c MachineCondition) Valid() bool {
	switch c {
	case MachineConditionExcellent, MachineConditionGood, MachineConditionFair, MachineConditionPoor:
		return true
	}
	return false
}

// Machine is a physical rentable unit. ModelID references the external model
// catalog; SerialNumber is unique within a model. RentalStatus is rewritten
// by the rental lifecycle, not by registry callers.
type Machine struct {
	ID           int32            `json:"id"`
	ModelID      int32            `json:"model_id"`
	SerialNumber string           `json:"serial_number"`
	Condition    MachineCondition `json:"condition"`
	RentalStatus MachineStatus    `json:"rental_status"`
	Location     string           `json:"location"`
	Notes        string           `json:"notes"`
	// Rate snapshot fields consumed by the default pricing engine. A rental
	// captures the computed total at creation time and never re-reads these.
	RateDayCents   int32 `json:"rate_day_cents"`
	RateWeekCents  int32 `json:"rate_week_cents"`
	RateMonthCents int32 `json:"rate_month_cents"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}
