package commission

import "math"

const DefaultPercentage = 5

// Fee computes the marketplace cut of a transaction, rounded to the nearest
// whole unit. The fee is fixed at order creation and never recomputed.
func Fee(amount float64, percentage float64) float64 {
	if percentage <= 0 {
		percentage = DefaultPercentage
	}

	return math.Round(amount * percentage / 100)
}
