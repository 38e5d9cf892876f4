package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-engine/internal/checkout"
	"github.com/iliyamo/hotel-booking-engine/internal/ledger"
	"github.com/iliyamo/hotel-booking-engine/internal/model"
	"github.com/iliyamo/hotel-booking-engine/internal/queue"
	"github.com/iliyamo/hotel-booking-engine/internal/repository"
	queue_publisher "github.com/iliyamo/hotel-booking-engine/internal/service"
	"github.com/iliyamo/hotel-booking-engine/internal/state"
)

// stdCheckoutHour is the house checkout time applied when an assignment
// carries no expected departure time.
const stdCheckoutHour = 11

type checkOutReq struct {
	RoomIDs          []uint64    `json:"room_ids"` // empty -> every active room
	At               string      `json:"at"`       // RFC3339, empty -> now
	NoShow           bool        `json:"no_show"`
	FinalAmountPaise int64       `json:"final_amount_paise"` // 0 -> keep the ledger's grand total
	AdjustmentPaise  int64       `json:"adjustment_paise"`
	Payment          *advanceReq `json:"payment"` // optional settlement receipt
}

type checkOutResp struct {
	BookingID   uint64                  `json:"booking_id"`
	Status      state.BookingStatus     `json:"status"`
	Rooms       []string                `json:"rooms"`
	NoShow      bool                    `json:"no_show"`
	LateMinutes int64                   `json:"late_minutes"`
	LateFee     int64                   `json:"late_fee_paise"`
	GraceUsed   bool                    `json:"grace_used"`
	Breakdown   *model.PaymentBreakdown `json:"breakdown"`
	At          time.Time               `json:"at"`
}

// scheduledDeparture returns the moment the assignment was due to vacate:
// the expected departure time when recorded, otherwise the house checkout
// hour on the departure date.
func scheduledDeparture(a *model.RoomAssignment) time.Time {
	if a.ExpectedOutAt != nil {
		return a.ExpectedOutAt.UTC()
	}
	d := a.CheckOutDate
	return time.Date(d.Year(), d.Month(), d.Day(), stdCheckoutHour, 0, 0, 0, time.UTC)
}

// CheckOut settles a departure: stamps actual departure on the target
// assignments, assesses the late fee against the grace policy and folds
// it into the ledger, releases the rooms to available and derives the
// booking status; the ledger is settled once the last room closes.  A
// confirmed booking can be checked out directly, covering stays whose
// arrival was never recorded.  With no_show the still-reserved rooms are
// instead closed out as never occupied (arrival recorded equal to
// departure) and no late fee applies to them.
func (h *BookingHandler) CheckOut(c echo.Context) error {
	staffID, err := actorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req checkOutReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	at := time.Now().UTC()
	if req.At != "" {
		t, err := time.Parse(time.RFC3339, req.At)
		if err != nil {
			return badRequest(c, "invalid at timestamp")
		}
		at = t.UTC()
	}
	if req.FinalAmountPaise < 0 {
		return badRequest(c, "final_amount_paise cannot be negative")
	}
	if req.Payment != nil {
		if req.Payment.AmountPaise <= 0 {
			return badRequest(c, "payment amount must be positive")
		}
		if !model.ValidMethod(model.PaymentMethod(req.Payment.Method)) {
			return badRequest(c, "unknown payment method")
		}
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
	if booking.Status != state.BookingCheckedIn && booking.Status != state.BookingConfirmed {
		return fail(c, &state.TransitionError{Entity: "booking", From: string(booking.Status), To: string(state.BookingCheckedOut)})
	}

	assignments, err := h.Assignments.ListByBookingTx(ctx, tx, id)
	if err != nil {
		return fail(c, err)
	}
	wanted := make(map[uint64]bool, len(req.RoomIDs))
	for _, roomID := range req.RoomIDs {
		wanted[roomID] = true
	}

	// Select the assignments leaving now, and the latest scheduled
	// departure among the occupied ones for the lateness assessment.
	var (
		targets []*model.RoomAssignment
		lastDue time.Time
		anyStay bool
	)
	for i := range assignments {
		a := &assignments[i]
		if len(wanted) > 0 && !wanted[a.RoomID] {
			continue
		}
		if !state.ActiveAssignment(a.Status) {
			if len(wanted) > 0 {
				return fail(c, repository.Conflictf("room %d already closed", a.RoomID))
			}
			continue
		}
		if err := state.ValidateAssignmentTransition(a.Status, state.AssignmentCheckedOut); err != nil {
			return fail(c, err)
		}
		// Without no_show, a still-reserved room counts as a stay whose
		// arrival was never recorded, not as a no-show.
		if a.Status == state.AssignmentCheckedIn || !req.NoShow {
			anyStay = true
			if due := scheduledDeparture(a); due.After(lastDue) {
				lastDue = due
			}
		}
		targets = append(targets, a)
	}
	if len(targets) == 0 {
		return fail(c, repository.Conflictf("no active rooms to check out"))
	}

	// Late fee applies only to stays a guest actually occupied.
	var lateness checkout.Result
	if anyStay {
		lateness = checkout.Assess(lastDue, at, h.Cfg.GracePolicy)
	}

	var (
		roomNumbers []string
		tasks       []*model.HousekeepingTask
		taskRooms   []string
	)
	for _, a := range targets {
		noShow := req.NoShow && a.Status == state.AssignmentReserved
		if err := h.Assignments.StampCheckOutTx(ctx, tx, a.ID, at, noShow); err != nil {
			return fail(c, err)
		}
		a.Status = state.AssignmentCheckedOut
		room, err := h.Rooms.GetForUpdateTx(ctx, tx, h.Cfg.HotelID, a.RoomID)
		if err != nil {
			return fail(c, err)
		}
		roomNumbers = append(roomNumbers, room.Number)
		// Vacated rooms go straight back to available; turnover is
		// tracked on the housekeeping board, not on the room status.
		if state.CanRoomTransition(room.Status, state.RoomAvailable) {
			if err := h.Rooms.UpdateStatusTx(ctx, tx, room.ID, state.RoomAvailable); err != nil {
				return fail(c, err)
			}
		}
		if !noShow {
			follow, _ := state.HousekeepingFor(state.RoomCleaning)
			task := &model.HousekeepingTask{HotelID: h.Cfg.HotelID, RoomID: room.ID,
				Kind: follow.Kind, Priority: follow.Priority,
				EstimatedMinutes: uint32(follow.EstimatedMinutes), CreatedBy: staffID}
			if err := h.Housekeeping.CreateTx(ctx, tx, task); err != nil {
				return fail(c, err)
			}
			tasks = append(tasks, task)
			taskRooms = append(taskRooms, room.Number)
		}
	}

	statuses := make([]state.AssignmentStatus, len(assignments))
	for i := range assignments {
		statuses[i] = assignments[i].Status
	}
	derived := state.DeriveBookingStatus(booking.Status, statuses)
	finalized := derived == state.BookingCheckedOut

	breakdown, err := h.Payments.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return fail(c, err)
	}
	// The fee lands on the ledger now even when sibling rooms are still
	// occupied; a later partial departure accumulates its own fee on top.
	ledger.AddLateFee(breakdown, lateness.FeePaise)
	if finalized {
		final := req.FinalAmountPaise
		if final == 0 {
			final = breakdown.GrandTotalPaise - breakdown.LateFeePaise + req.AdjustmentPaise
		}
		ledger.SettleCheckout(breakdown, final, req.AdjustmentPaise)
	}
	if req.Payment != nil {
		method := model.PaymentMethod(req.Payment.Method)
		if err := ledger.ApplyPayment(breakdown, req.Payment.AmountPaise, method, model.KindReceipt); err != nil {
			return badRequest(c, err.Error())
		}
		txn := model.PaymentTransaction{BookingID: id, AmountPaise: req.Payment.AmountPaise,
			Method: method, Kind: model.KindReceipt, StaffID: staffID, Status: "completed"}
		if err := h.Payments.InsertTransactionTx(ctx, tx, &txn); err != nil {
			return fail(c, err)
		}
	}
	if err := h.Payments.UpdateTx(ctx, tx, breakdown); err != nil {
		return fail(c, err)
	}

	if derived != booking.Status {
		if err := h.Bookings.UpdateStatusTx(ctx, tx, id, derived); err != nil {
			return fail(c, err)
		}
	}

	detail := fmt.Sprintf("booking %s: %d room(s) out at %s, late %d min, fee %d paise, outstanding %d paise",
		booking.Number, len(targets), at.Format(time.RFC3339), lateness.LateMinutes, lateness.FeePaise, breakdown.OutstandingPaise)
	if req.NoShow {
		detail = fmt.Sprintf("booking %s: no-show closeout of %d room(s)", booking.Number, len(targets))
	}
	if err := h.Audit.CreateTx(ctx, tx, &model.AuditEntry{
		HotelID: h.Cfg.HotelID, ActorID: staffID, Action: "booking.checkout",
		EntityType: "booking", EntityID: id, Detail: detail,
	}); err != nil {
		return fail(c, err)
	}

	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}
	committed = true

	// Notification is best-effort: the checkout already committed.
	if finalized {
		_ = queue_publisher.PublishCheckoutCompleted(c.Request().Context(), queue.CheckoutCompletedEvent{
			BookingID: id, BookingNumber: booking.Number, HotelID: h.Cfg.HotelID,
			GuestID: booking.GuestID, RoomNumbers: roomNumbers, NoShow: req.NoShow,
			LateMinutes: lateness.LateMinutes, LateFeePaise: lateness.FeePaise,
			GrandTotalPaise: breakdown.GrandTotalPaise, OutstandingPaise: breakdown.OutstandingPaise,
			CheckedOutAt: at.Format(time.RFC3339),
		})
	}
	for i, task := range tasks {
		_ = queue_publisher.PublishHousekeepingTask(c.Request().Context(), queue.HousekeepingTaskEvent{
			TaskID: task.ID, HotelID: h.Cfg.HotelID, RoomNumber: taskRooms[i],
			Kind: task.Kind, Priority: task.Priority,
			EstimatedMinutes: int(task.EstimatedMinutes),
			CreatedAt:        at.Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, checkOutResp{
		BookingID: id, Status: derived, Rooms: roomNumbers, NoShow: req.NoShow,
		LateMinutes: lateness.LateMinutes, LateFee: lateness.FeePaise, GraceUsed: lateness.GraceUsed,
		Breakdown: breakdown, At: at,
	})
}
