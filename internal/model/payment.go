package model

import "time"

// PaymentMethod enumerates the accepted settlement methods.  Each method
// has its own running-total column in the payment breakdown.
type PaymentMethod string

const (
	MethodCash PaymentMethod = "cash"
	MethodCard PaymentMethod = "card"
	MethodUPI  PaymentMethod = "upi"
	MethodBank PaymentMethod = "bank"
)

// ValidMethod reports whether m is a known payment method.
func ValidMethod(m PaymentMethod) bool {
	switch m {
	case MethodCash, MethodCard, MethodUPI, MethodBank:
		return true
	}
	return false
}

// PaymentKind distinguishes money taken before the stay (advance) from
// money taken during or after it (receipt).
type PaymentKind string

const (
	KindAdvance PaymentKind = "advance"
	KindReceipt PaymentKind = "receipt"
)

// TaxLine is one computed tax component of a booking's grand total.  The
// set of components is configuration (GST, CGST, SGST, luxury, service
// charge...); components apply to the base amount independently and are
// never compounded on each other.
type TaxLine struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
	Amount  int64   `json:"amount"`
}

// PaymentBreakdown is the per-booking running ledger: base total, taxes,
// per-method advances and receipts, and the outstanding balance.  The
// invariant outstanding = grand_total - advances - receipts holds at all
// times; a negative outstanding represents refundable credit and is not
// clamped.
type PaymentBreakdown struct {
	BookingID        uint64    // payment_breakdowns.booking_id (PK, 1:1 with booking)
	BaseTotalPaise   int64     // payment_breakdowns.base_total_paise
	AdjustmentPaise  int64     // payment_breakdowns.adjustment_paise (checkout-time manual adjustment)
	LateFeePaise     int64     // payment_breakdowns.late_fee_paise
	TaxLines         []TaxLine // payment_breakdowns.tax_lines (JSON)
	TotalTaxPaise    int64     // payment_breakdowns.total_tax_paise
	GrandTotalPaise  int64     // payment_breakdowns.grand_total_paise
	AdvanceCash      int64     // payment_breakdowns.advance_cash_paise
	AdvanceCard      int64     // payment_breakdowns.advance_card_paise
	AdvanceUPI       int64     // payment_breakdowns.advance_upi_paise
	AdvanceBank      int64     // payment_breakdowns.advance_bank_paise
	ReceiptCash      int64     // payment_breakdowns.receipt_cash_paise
	ReceiptCard      int64     // payment_breakdowns.receipt_card_paise
	ReceiptUPI       int64     // payment_breakdowns.receipt_upi_paise
	ReceiptBank      int64     // payment_breakdowns.receipt_bank_paise
	OutstandingPaise int64     // payment_breakdowns.outstanding_paise
	UpdatedAt        time.Time // payment_breakdowns.updated_at
}

// PaymentTransaction is one money movement against a booking.  Rows are
// append-only; corrections are represented by offsetting transactions.
type PaymentTransaction struct {
	ID          uint64        // payment_transactions.id
	BookingID   uint64        // payment_transactions.booking_id
	AmountPaise int64         // payment_transactions.amount_paise
	Method      PaymentMethod // payment_transactions.method
	Kind        PaymentKind   // payment_transactions.kind
	StaffID     uint64        // payment_transactions.staff_id (collecting actor)
	Status      string        // payment_transactions.status (completed/voided)
	CreatedAt   time.Time     // payment_transactions.created_at
}
