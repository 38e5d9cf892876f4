package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
	"github.com/iliyamo/hotel-booking-engine/internal/repository"
	"github.com/iliyamo/hotel-booking-engine/internal/state"
)

type checkInReq struct {
	RoomIDs []uint64 `json:"room_ids"` // empty -> every reserved room
	At      string   `json:"at"`       // RFC3339, empty -> now
}

// CheckIn marks the guest arrived on some or all reserved rooms of a
// booking.  Each affected assignment moves to checked_in with the actual
// arrival stamped, its room moves to occupied, and the booking follows
// its assignments.
func (h *BookingHandler) CheckIn(c echo.Context) error {
	staffID, err := actorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req checkInReq
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
	if booking.Status != state.BookingConfirmed && booking.Status != state.BookingCheckedIn {
		return fail(c, &state.TransitionError{Entity: "booking", From: string(booking.Status), To: string(state.BookingCheckedIn)})
	}

	assignments, err := h.Assignments.ListByBookingTx(ctx, tx, id)
	if err != nil {
		return fail(c, err)
	}
	wanted := make(map[uint64]bool, len(req.RoomIDs))
	for _, roomID := range req.RoomIDs {
		wanted[roomID] = true
	}

	var arrived []uint64
	for i := range assignments {
		a := &assignments[i]
		if len(wanted) > 0 && !wanted[a.RoomID] {
			continue
		}
		if len(wanted) > 0 && a.Status != state.AssignmentReserved {
			return fail(c, repository.Conflictf("room %d is not awaiting check-in", a.RoomID))
		}
		if a.Status != state.AssignmentReserved {
			continue
		}
		if err := state.ValidateAssignmentTransition(a.Status, state.AssignmentCheckedIn); err != nil {
			return fail(c, err)
		}
		if err := h.Assignments.StampCheckInTx(ctx, tx, a.ID, at); err != nil {
			return fail(c, err)
		}
		a.Status = state.AssignmentCheckedIn
		room, err := h.Rooms.GetForUpdateTx(ctx, tx, h.Cfg.HotelID, a.RoomID)
		if err != nil {
			return fail(c, err)
		}
		if err := state.ValidateRoomTransition(room.Status, state.RoomOccupied); err != nil {
			return fail(c, err)
		}
		if err := h.Rooms.UpdateStatusTx(ctx, tx, room.ID, state.RoomOccupied); err != nil {
			return fail(c, err)
		}
		arrived = append(arrived, a.RoomID)
	}
	if len(arrived) == 0 {
		return fail(c, repository.Conflictf("no reserved rooms to check in"))
	}

	statuses := make([]state.AssignmentStatus, len(assignments))
	for i := range assignments {
		statuses[i] = assignments[i].Status
	}
	derived := state.DeriveBookingStatus(booking.Status, statuses)
	if derived != booking.Status {
		if err := h.Bookings.UpdateStatusTx(ctx, tx, id, derived); err != nil {
			return fail(c, err)
		}
	}

	if err := h.Audit.CreateTx(ctx, tx, &model.AuditEntry{
		HotelID: h.Cfg.HotelID, ActorID: staffID, Action: "booking.checkin",
		EntityType: "booking", EntityID: id,
		Detail: fmt.Sprintf("booking %s: %d room(s) checked in at %s", booking.Number, len(arrived), at.Format(time.RFC3339)),
	}); err != nil {
		return fail(c, err)
	}

	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{
		"booking_id": id, "status": derived, "checked_in_rooms": arrived, "at": at,
	})
}
