package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
)

// PaymentRepo persists the per-booking payment breakdown and the
// append-only payment transaction log.  Every write runs inside the
// caller's transaction so the ledger can never drift from the booking
// state it describes.
type PaymentRepo struct {
	db *sql.DB
}

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const breakdownColumns = `booking_id, base_total_paise, adjustment_paise, late_fee_paise, tax_lines,
	total_tax_paise, grand_total_paise,
	advance_cash_paise, advance_card_paise, advance_upi_paise, advance_bank_paise,
	receipt_cash_paise, receipt_card_paise, receipt_upi_paise, receipt_bank_paise,
	outstanding_paise, updated_at`

func scanBreakdown(row interface{ Scan(...interface{}) error }) (*model.PaymentBreakdown, error) {
	var b model.PaymentBreakdown
	var lines []byte
	err := row.Scan(&b.BookingID, &b.BaseTotalPaise, &b.AdjustmentPaise, &b.LateFeePaise, &lines,
		&b.TotalTaxPaise, &b.GrandTotalPaise,
		&b.AdvanceCash, &b.AdvanceCard, &b.AdvanceUPI, &b.AdvanceBank,
		&b.ReceiptCash, &b.ReceiptCard, &b.ReceiptUPI, &b.ReceiptBank,
		&b.OutstandingPaise, &b.UpdatedAt)
	if err != nil {
		return nil, notFoundIfNoRows(err)
	}
	if len(lines) > 0 {
		if err := json.Unmarshal(lines, &b.TaxLines); err != nil {
			return nil, err
		}
	}
	return &b, nil
}

// CreateTx inserts the breakdown row created together with its booking.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.PaymentBreakdown) error {
	lines, err := json.Marshal(b.TaxLines)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO payment_breakdowns (booking_id, base_total_paise, adjustment_paise, late_fee_paise, tax_lines,
		   total_tax_paise, grand_total_paise,
		   advance_cash_paise, advance_card_paise, advance_upi_paise, advance_bank_paise,
		   receipt_cash_paise, receipt_card_paise, receipt_upi_paise, receipt_bank_paise,
		   outstanding_paise)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.BookingID, b.BaseTotalPaise, b.AdjustmentPaise, b.LateFeePaise, lines,
		b.TotalTaxPaise, b.GrandTotalPaise,
		b.AdvanceCash, b.AdvanceCard, b.AdvanceUPI, b.AdvanceBank,
		b.ReceiptCash, b.ReceiptCard, b.ReceiptUPI, b.ReceiptBank,
		b.OutstandingPaise)
	return err
}

// GetByBooking loads the breakdown without locking (read endpoints).
func (r *PaymentRepo) GetByBooking(ctx context.Context, bookingID uint64) (*model.PaymentBreakdown, error) {
	return scanBreakdown(r.db.QueryRowContext(ctx,
		`SELECT `+breakdownColumns+` FROM payment_breakdowns WHERE booking_id = ?`, bookingID))
}

// GetForUpdateTx loads the breakdown with a row lock so concurrent
// payments against the same booking serialize.
func (r *PaymentRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (*model.PaymentBreakdown, error) {
	return scanBreakdown(tx.QueryRowContext(ctx,
		`SELECT `+breakdownColumns+` FROM payment_breakdowns WHERE booking_id = ? FOR UPDATE`, bookingID))
}

// UpdateTx persists the full recomputed breakdown.
func (r *PaymentRepo) UpdateTx(ctx context.Context, tx *sql.Tx, b *model.PaymentBreakdown) error {
	lines, err := json.Marshal(b.TaxLines)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE payment_breakdowns SET base_total_paise = ?, adjustment_paise = ?, late_fee_paise = ?, tax_lines = ?,
		   total_tax_paise = ?, grand_total_paise = ?,
		   advance_cash_paise = ?, advance_card_paise = ?, advance_upi_paise = ?, advance_bank_paise = ?,
		   receipt_cash_paise = ?, receipt_card_paise = ?, receipt_upi_paise = ?, receipt_bank_paise = ?,
		   outstanding_paise = ?
		 WHERE booking_id = ?`,
		b.BaseTotalPaise, b.AdjustmentPaise, b.LateFeePaise, lines,
		b.TotalTaxPaise, b.GrandTotalPaise,
		b.AdvanceCash, b.AdvanceCard, b.AdvanceUPI, b.AdvanceBank,
		b.ReceiptCash, b.ReceiptCard, b.ReceiptUPI, b.ReceiptBank,
		b.OutstandingPaise, b.BookingID)
	return err
}

// InsertTransactionTx appends one payment transaction and populates its
// ID.  Transactions are never updated or deleted; corrections are
// offsetting rows.
func (r *PaymentRepo) InsertTransactionTx(ctx context.Context, tx *sql.Tx, t *model.PaymentTransaction) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO payment_transactions (booking_id, amount_paise, method, kind, staff_id, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.BookingID, t.AmountPaise, t.Method, t.Kind, t.StaffID, t.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// ListTransactions returns the booking's payment transactions oldest
// first.
func (r *PaymentRepo) ListTransactions(ctx context.Context, bookingID uint64) ([]model.PaymentTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, booking_id, amount_paise, method, kind, staff_id, status, created_at
		 FROM payment_transactions WHERE booking_id = ? ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.PaymentTransaction, 0)
	for rows.Next() {
		var t model.PaymentTransaction
		if err := rows.Scan(&t.ID, &t.BookingID, &t.AmountPaise, &t.Method, &t.Kind,
			&t.StaffID, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
