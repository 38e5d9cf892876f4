package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-engine/internal/ledger"
	"github.com/iliyamo/hotel-booking-engine/internal/model"
	"github.com/iliyamo/hotel-booking-engine/internal/repository"
	"github.com/iliyamo/hotel-booking-engine/internal/state"
)

type paymentReq struct {
	AmountPaise int64  `json:"amount_paise"`
	Method      string `json:"method"` // cash | card | upi | bank
	Kind        string `json:"kind"`   // advance | receipt
}

// RecordPayment applies one payment to a booking's ledger: the matching
// per-method running total grows, the outstanding balance is recomputed
// and an append-only transaction row is written, all atomically.  An
// overpayment pushes outstanding negative, which is refundable credit.
func (h *BookingHandler) RecordPayment(c echo.Context) error {
	staffID, err := actorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.AmountPaise <= 0 {
		return badRequest(c, "amount_paise must be positive")
	}
	method := model.PaymentMethod(req.Method)
	if !model.ValidMethod(method) {
		return badRequest(c, "method must be cash, card, upi or bank")
	}
	kind := model.PaymentKind(req.Kind)
	if kind != model.KindAdvance && kind != model.KindReceipt {
		return badRequest(c, "kind must be advance or receipt")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return fail(c, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	booking, err := h.Bookings.GetForUpdateTx(ctx, tx, h.Cfg.HotelID, id)
	if err != nil {
		return fail(c, err)
	}
	if booking.Status == state.BookingCancelled {
		return fail(c, repository.Conflictf("booking %s is cancelled", booking.Number))
	}
	if kind == model.KindAdvance && booking.Status == state.BookingCheckedOut {
		return fail(c, repository.Conflictf("booking %s is checked out; record a receipt instead", booking.Number))
	}

	breakdown, err := h.Payments.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return fail(c, err)
	}
	if err := ledger.ApplyPayment(breakdown, req.AmountPaise, method, kind); err != nil {
		return badRequest(c, err.Error())
	}
	txn := model.PaymentTransaction{BookingID: id, AmountPaise: req.AmountPaise,
		Method: method, Kind: kind, StaffID: staffID, Status: "completed"}
	if err := h.Payments.InsertTransactionTx(ctx, tx, &txn); err != nil {
		return fail(c, err)
	}
	if err := h.Payments.UpdateTx(ctx, tx, breakdown); err != nil {
		return fail(c, err)
	}
	if err := h.Audit.CreateTx(ctx, tx, &model.AuditEntry{
		HotelID: h.Cfg.HotelID, ActorID: staffID, Action: "booking.payment",
		EntityType: "booking", EntityID: id,
		Detail: fmt.Sprintf("booking %s: %s %d paise via %s, outstanding %d paise",
			booking.Number, kind, req.AmountPaise, method, breakdown.OutstandingPaise),
	}); err != nil {
		return fail(c, err)
	}

	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}
	committed = true

	return c.JSON(http.StatusCreated, echo.Map{
		"transaction": txn, "breakdown": breakdown,
	})
}

// ListPayments returns a booking's ledger and its transaction history.
func (h *BookingHandler) ListPayments(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Bookings.GetByID(ctx, h.Cfg.HotelID, id); err != nil {
		return fail(c, err)
	}
	breakdown, err := h.Payments.GetByBooking(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	txns, err := h.Payments.ListTransactions(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"breakdown": breakdown, "transactions": txns,
	})
}
