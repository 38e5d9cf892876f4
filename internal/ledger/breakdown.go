package ledger

import (
	"fmt"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
)

// NewBreakdown builds the initial payment breakdown for a booking from a
// taxed total.  Advances recorded at creation time are applied separately
// via ApplyPayment so they also appear as transactions.
func NewBreakdown(bookingID uint64, tt TaxedTotal) model.PaymentBreakdown {
	b := model.PaymentBreakdown{
		BookingID:       bookingID,
		BaseTotalPaise:  tt.BasePaise,
		TaxLines:        tt.Lines,
		TotalTaxPaise:   tt.TotalTaxPaise,
		GrandTotalPaise: tt.GrandTotalPaise,
	}
	Recompute(&b)
	return b
}

// TotalAdvances sums the per-method advance columns.
func TotalAdvances(b *model.PaymentBreakdown) int64 {
	return b.AdvanceCash + b.AdvanceCard + b.AdvanceUPI + b.AdvanceBank
}

// TotalReceipts sums the per-method receipt columns.
func TotalReceipts(b *model.PaymentBreakdown) int64 {
	return b.ReceiptCash + b.ReceiptCard + b.ReceiptUPI + b.ReceiptBank
}

// Recompute restores the outstanding-balance invariant after any change
// to the grand total or the per-method totals.  Outstanding may go
// negative; that is a refundable credit, not an error.
func Recompute(b *model.PaymentBreakdown) {
	b.OutstandingPaise = b.GrandTotalPaise - TotalAdvances(b) - TotalReceipts(b)
}

// ApplyPayment adds amount to the matching per-method running total and
// recomputes the outstanding balance.  The amount must be positive and
// the method known.
func ApplyPayment(b *model.PaymentBreakdown, amountPaise int64, method model.PaymentMethod, kind model.PaymentKind) error {
	if amountPaise <= 0 {
		return fmt.Errorf("payment amount must be positive, got %d", amountPaise)
	}
	if !model.ValidMethod(method) {
		return fmt.Errorf("unknown payment method %q", method)
	}
	switch kind {
	case model.KindAdvance:
		switch method {
		case model.MethodCash:
			b.AdvanceCash += amountPaise
		case model.MethodCard:
			b.AdvanceCard += amountPaise
		case model.MethodUPI:
			b.AdvanceUPI += amountPaise
		case model.MethodBank:
			b.AdvanceBank += amountPaise
		}
	case model.KindReceipt:
		switch method {
		case model.MethodCash:
			b.ReceiptCash += amountPaise
		case model.MethodCard:
			b.ReceiptCard += amountPaise
		case model.MethodUPI:
			b.ReceiptUPI += amountPaise
		case model.MethodBank:
			b.ReceiptBank += amountPaise
		}
	default:
		return fmt.Errorf("unknown payment kind %q", kind)
	}
	Recompute(b)
	return nil
}

// AddLateFee folds a departure fee into the grand total and the
// outstanding balance.  Each room leaving a multi-room booking may
// contribute its own fee, so the column accumulates across calls.
func AddLateFee(b *model.PaymentBreakdown, feePaise int64) {
	if feePaise <= 0 {
		return
	}
	b.LateFeePaise += feePaise
	b.GrandTotalPaise += feePaise
	Recompute(b)
}

// SettleCheckout replaces the grand total with the final settled amount
// plus the late fees accumulated so far, records the manual adjustment,
// and recomputes the outstanding balance.  The final amount is a
// settlement figure, not a re-taxation input.
func SettleCheckout(b *model.PaymentBreakdown, finalAmountPaise, adjustmentPaise int64) {
	b.AdjustmentPaise = adjustmentPaise
	b.GrandTotalPaise = finalAmountPaise + b.LateFeePaise
	Recompute(b)
}
