package rental

import (
	"math"
	"time"
)

// OvertimeRateCentsPerHour is the flat rate charged for every started
// hour a bike is kept past the scheduled end time.
const OvertimeRateCentsPerHour int64 = 1500

// BaseCostCents returns the fixed base cost of a rental. It is computed
// once at booking creation and never recomputed.
func BaseCostCents(pricePerHourCents int64, durationHours int) int64 {
	return pricePerHourCents * int64(durationHours)
}

// OvertimeHours returns the number of billable overtime hours between
// the scheduled end time and the actual return time. Overtime is billed
// in whole-hour increments rounded up: any fractional overage starts a
// new billable hour.
func OvertimeHours(endTime, returnedAt time.Time) int {
	if !returnedAt.After(endTime) {
		return 0
	}
	return int(math.Ceil(returnedAt.Sub(endTime).Hours()))
}

// OvertimeChargeCents returns the overtime charge for a return at the
// given time.
func OvertimeChargeCents(endTime, returnedAt time.Time) int64 {
	return int64(OvertimeHours(endTime, returnedAt)) * OvertimeRateCentsPerHour
}
