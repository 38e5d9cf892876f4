// Package ledger is the single source of truth for booking money math:
// tax computation, per-method running totals and the outstanding balance.
// All amounts are integer paise, so the conservation invariant
// outstanding = grand_total - advances - receipts holds exactly, with no
// floating-point epsilon.  Callers never supply a pre-taxed total without
// the engine re-deriving it; see ReconcileGrandTotal.
package ledger

import (
	"fmt"
	"math"
	"time"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
)

// TaxRate is one configured tax component (name -> percent).  Components
// each apply to the base amount independently; they are never compounded.
type TaxRate struct {
	Name    string
	Percent float64
}

// TaxedTotal is the result of applying a rate set to a base amount.
type TaxedTotal struct {
	BasePaise       int64
	Lines           []model.TaxLine
	TotalTaxPaise   int64
	GrandTotalPaise int64
}

// ComputeTaxedTotal applies each rate to the base amount (base * rate /
// 100, rounded half away from zero to whole paise) and sums the
// components.  Calling it twice with identical inputs yields identical
// output.
func ComputeTaxedTotal(basePaise int64, rates []TaxRate) TaxedTotal {
	out := TaxedTotal{BasePaise: basePaise, Lines: make([]model.TaxLine, 0, len(rates))}
	for _, r := range rates {
		amt := int64(math.Round(float64(basePaise) * r.Percent / 100))
		out.Lines = append(out.Lines, model.TaxLine{Name: r.Name, Percent: r.Percent, Amount: amt})
		out.TotalTaxPaise += amt
	}
	out.GrandTotalPaise = basePaise + out.TotalTaxPaise
	return out
}

// ReconcileGrandTotal re-derives the taxed total from the base amount and
// checks a caller-supplied grand total against it.  A mismatch beyond one
// rupee (100 paise, covering legacy per-component rounding differences) is
// an error rather than silently trusting the caller, which would risk
// double taxation on already-taxed figures.
func ReconcileGrandTotal(basePaise, suppliedGrandPaise int64, rates []TaxRate) (TaxedTotal, error) {
	tt := ComputeTaxedTotal(basePaise, rates)
	if suppliedGrandPaise != 0 {
		diff := tt.GrandTotalPaise - suppliedGrandPaise
		if diff < -100 || diff > 100 {
			return TaxedTotal{}, fmt.Errorf(
				"supplied total %d does not match derived taxed total %d (base %d)",
				suppliedGrandPaise, tt.GrandTotalPaise, basePaise)
		}
	}
	return tt, nil
}

// Nights returns the number of nights between two check dates.  A
// same-day stay counts as one night for billing.
func Nights(checkIn, checkOut time.Time) uint32 {
	n := int(checkOut.Sub(checkIn).Hours() / 24)
	if n < 1 {
		n = 1
	}
	return uint32(n)
}

// RoomTotal computes rate * nights for one assignment.
func RoomTotal(ratePaise int64, nights uint32) int64 {
	return ratePaise * int64(nights)
}
