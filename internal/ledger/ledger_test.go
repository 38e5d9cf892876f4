package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
)

func TestComputeTaxedTotal(t *testing.T) {
	rates := []TaxRate{{Name: "GST", Percent: 12}}
	tt := ComputeTaxedTotal(500000, rates) // Rs 5,000.00
	assert.Equal(t, int64(60000), tt.TotalTaxPaise)
	assert.Equal(t, int64(560000), tt.GrandTotalPaise) // Rs 5,600.00
	require.Len(t, tt.Lines, 1)
	assert.Equal(t, "GST", tt.Lines[0].Name)
	assert.Equal(t, int64(60000), tt.Lines[0].Amount)
}

func TestComputeTaxedTotalNotCompounded(t *testing.T) {
	rates := []TaxRate{
		{Name: "CGST", Percent: 6},
		{Name: "SGST", Percent: 6},
		{Name: "luxury", Percent: 2.5},
	}
	tt := ComputeTaxedTotal(100000, rates)
	// each component applies to the base independently
	assert.Equal(t, int64(6000), tt.Lines[0].Amount)
	assert.Equal(t, int64(6000), tt.Lines[1].Amount)
	assert.Equal(t, int64(2500), tt.Lines[2].Amount)
	assert.Equal(t, int64(14500), tt.TotalTaxPaise)
	assert.Equal(t, int64(114500), tt.GrandTotalPaise)
}

func TestComputeTaxedTotalIdempotent(t *testing.T) {
	rates := []TaxRate{{Name: "GST", Percent: 12}, {Name: "service", Percent: 7.33}}
	a := ComputeTaxedTotal(123457, rates)
	b := ComputeTaxedTotal(123457, rates)
	assert.Equal(t, a, b)
	var sum int64
	for _, l := range a.Lines {
		sum += l.Amount
	}
	assert.Equal(t, a.TotalTaxPaise, sum)
}

func TestReconcileGrandTotal(t *testing.T) {
	rates := []TaxRate{{Name: "GST", Percent: 12}}
	// matching supplied total is accepted
	tt, err := ReconcileGrandTotal(500000, 560000, rates)
	require.NoError(t, err)
	assert.Equal(t, int64(560000), tt.GrandTotalPaise)

	// small rounding drift is tolerated
	_, err = ReconcileGrandTotal(500000, 560050, rates)
	assert.NoError(t, err)

	// a pre-taxed figure taxed again would drift far beyond a rupee
	_, err = ReconcileGrandTotal(560000, 627200, []TaxRate{{Name: "GST", Percent: 12}})
	assert.NoError(t, err) // consistent inputs: 560000*1.12 == 627200
	_, err = ReconcileGrandTotal(500000, 627200, rates)
	assert.Error(t, err)

	// zero supplied total means "derive for me"
	tt, err = ReconcileGrandTotal(500000, 0, rates)
	require.NoError(t, err)
	assert.Equal(t, int64(560000), tt.GrandTotalPaise)
}

func TestNights(t *testing.T) {
	in := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, uint32(2), Nights(in, in.AddDate(0, 0, 2)))
	assert.Equal(t, uint32(1), Nights(in, in)) // same-day stay bills one night
	assert.Equal(t, int64(250000), RoomTotal(125000, 2))
}

func TestApplyPaymentConservation(t *testing.T) {
	tt := ComputeTaxedTotal(500000, []TaxRate{{Name: "GST", Percent: 12}})
	b := NewBreakdown(7, tt)
	assert.Equal(t, int64(560000), b.OutstandingPaise)

	require.NoError(t, ApplyPayment(&b, 200000, model.MethodCash, model.KindAdvance))
	assert.Equal(t, int64(360000), b.OutstandingPaise) // Rs 3,600
	assert.Equal(t, int64(200000), b.AdvanceCash)

	require.NoError(t, ApplyPayment(&b, 100000, model.MethodUPI, model.KindReceipt))
	assert.Equal(t, b.GrandTotalPaise-TotalAdvances(&b)-TotalReceipts(&b), b.OutstandingPaise)

	// overpayment produces negative outstanding (credit), no clamping
	require.NoError(t, ApplyPayment(&b, 300000, model.MethodCard, model.KindReceipt))
	assert.Equal(t, int64(-40000), b.OutstandingPaise)
}

func TestApplyPaymentRejectsBadInput(t *testing.T) {
	b := NewBreakdown(1, ComputeTaxedTotal(1000, nil))
	assert.Error(t, ApplyPayment(&b, 0, model.MethodCash, model.KindAdvance))
	assert.Error(t, ApplyPayment(&b, -5, model.MethodCash, model.KindAdvance))
	assert.Error(t, ApplyPayment(&b, 100, "cheque", model.KindAdvance))
	assert.Error(t, ApplyPayment(&b, 100, model.MethodCash, "deposit"))
}

func TestAddLateFeeAccumulates(t *testing.T) {
	b := NewBreakdown(1, ComputeTaxedTotal(500000, []TaxRate{{Name: "GST", Percent: 12}}))
	require.NoError(t, ApplyPayment(&b, 200000, model.MethodCash, model.KindAdvance))

	// two rooms leave late on different days; each fee lands immediately
	AddLateFee(&b, 10000)
	assert.Equal(t, int64(10000), b.LateFeePaise)
	assert.Equal(t, int64(570000), b.GrandTotalPaise)
	assert.Equal(t, int64(370000), b.OutstandingPaise)

	AddLateFee(&b, 20000)
	assert.Equal(t, int64(30000), b.LateFeePaise)
	assert.Equal(t, int64(590000), b.GrandTotalPaise)
	assert.Equal(t, int64(390000), b.OutstandingPaise)

	// an on-time departure contributes nothing
	AddLateFee(&b, 0)
	assert.Equal(t, int64(30000), b.LateFeePaise)
	assert.Equal(t, int64(590000), b.GrandTotalPaise)
}

func TestSettleCheckout(t *testing.T) {
	b := NewBreakdown(1, ComputeTaxedTotal(500000, []TaxRate{{Name: "GST", Percent: 12}}))
	require.NoError(t, ApplyPayment(&b, 200000, model.MethodCash, model.KindAdvance))
	AddLateFee(&b, 10000) // Rs 100 late fee

	SettleCheckout(&b, 560000, 0)
	assert.Equal(t, int64(570000), b.GrandTotalPaise)
	assert.Equal(t, int64(10000), b.LateFeePaise)
	assert.Equal(t, int64(370000), b.OutstandingPaise)
}
