package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-engine/internal/availability"
	"github.com/iliyamo/hotel-booking-engine/internal/model"
	"github.com/iliyamo/hotel-booking-engine/internal/queue"
	"github.com/iliyamo/hotel-booking-engine/internal/repository"
	queue_publisher "github.com/iliyamo/hotel-booking-engine/internal/service"
	"github.com/iliyamo/hotel-booking-engine/internal/state"
)

type transferReq struct {
	FromRoomID uint64 `json:"from_room_id"`
	ToRoomID   uint64 `json:"to_room_id"`
	Reason     string `json:"reason"`
}

// Transfer moves an in-progress stay from one room to another.  The
// validation phase checks everything before anything changes: distinct
// rooms, a stated reason, a transferable booking, an active assignment on
// the source room and a free, conflict-free target room.  The execution
// phase then repoints the assignment, swaps both room states, raises a
// turnover task for the vacated room and writes the transfer record and
// the audit entry, all in one transaction.
func (h *BookingHandler) Transfer(c echo.Context) error {
	staffID, err := actorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req transferReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Reason = strings.TrimSpace(req.Reason)
	switch {
	case req.FromRoomID == 0 || req.ToRoomID == 0:
		return badRequest(c, "from_room_id and to_room_id required")
	case req.FromRoomID == req.ToRoomID:
		return badRequest(c, "source and target room must differ")
	case req.Reason == "":
		return badRequest(c, "reason required")
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
		return fail(c, repository.Conflictf("booking %s cannot be transferred in status %s", booking.Number, booking.Status))
	}

	assignment, err := h.Assignments.GetByBookingAndRoomTx(ctx, tx, id, req.FromRoomID)
	if err != nil {
		if err == repository.ErrNotFound {
			return fail(c, repository.Conflictf("booking has no active stay in room %d", req.FromRoomID))
		}
		return fail(c, err)
	}

	fromRoom, err := h.Rooms.GetForUpdateTx(ctx, tx, h.Cfg.HotelID, req.FromRoomID)
	if err != nil {
		return fail(c, err)
	}
	toRoom, err := h.Rooms.GetForUpdateTx(ctx, tx, h.Cfg.HotelID, req.ToRoomID)
	if err != nil {
		return fail(c, err)
	}
	if !toRoom.IsActive {
		return fail(c, repository.Conflictf("room %s is not in service", toRoom.Number))
	}
	if toRoom.Status != state.RoomAvailable {
		return fail(c, repository.Conflictf("room %s is %s, not available", toRoom.Number, toRoom.Status))
	}

	// The target must also be free of overlapping assignments for the
	// remainder of the stay.
	candidate := repository.Stay(assignment)
	existing, err := h.Assignments.FindConflictCandidatesTx(ctx, tx, req.ToRoomID, assignment.CheckInDate, assignment.CheckOutDate)
	if err != nil {
		return fail(c, err)
	}
	for i := range existing {
		if availability.Conflicts(repository.Stay(&existing[i]), candidate) {
			return fail(c, repository.Conflictf("room %s already booked for the stay dates", toRoom.Number))
		}
	}

	// Execution: nothing below may make a business decision.
	if err := h.Assignments.RepointRoomTx(ctx, tx, assignment.ID, req.ToRoomID); err != nil {
		return fail(c, err)
	}
	targetState := state.RoomReserved
	if assignment.Status == state.AssignmentCheckedIn {
		targetState = state.RoomOccupied
	}
	if err := state.ValidateRoomTransition(toRoom.Status, targetState); err != nil {
		return fail(c, err)
	}
	if err := h.Rooms.UpdateStatusTx(ctx, tx, toRoom.ID, targetState); err != nil {
		return fail(c, err)
	}
	// The vacated room is available again right away; when the guest had
	// moved in, its turnover goes on the housekeeping board.
	if state.CanRoomTransition(fromRoom.Status, state.RoomAvailable) {
		if err := h.Rooms.UpdateStatusTx(ctx, tx, fromRoom.ID, state.RoomAvailable); err != nil {
			return fail(c, err)
		}
	}
	if assignment.Status == state.AssignmentCheckedIn {
		follow, _ := state.HousekeepingFor(state.RoomCleaning)
		task := model.HousekeepingTask{HotelID: h.Cfg.HotelID, RoomID: fromRoom.ID,
			Kind: follow.Kind, Priority: follow.Priority,
			EstimatedMinutes: uint32(follow.EstimatedMinutes), CreatedBy: staffID}
		if err := h.Housekeeping.CreateTx(ctx, tx, &task); err != nil {
			return fail(c, err)
		}
	}

	now := time.Now().UTC()
	record := model.TransferRecord{
		BookingID: id, FromRoomID: req.FromRoomID, ToRoomID: req.ToRoomID,
		Reason: req.Reason, StaffID: staffID, TransferredAt: now,
	}
	if err := h.Transfers.CreateTx(ctx, tx, &record); err != nil {
		return fail(c, err)
	}
	if err := h.Audit.CreateTx(ctx, tx, &model.AuditEntry{
		HotelID: h.Cfg.HotelID, ActorID: staffID, Action: "booking.transfer",
		EntityType: "booking", EntityID: id,
		Detail: fmt.Sprintf("booking %s moved room %s -> %s: %s", booking.Number, fromRoom.Number, toRoom.Number, req.Reason),
	}); err != nil {
		return fail(c, err)
	}

	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}
	committed = true

	_ = queue_publisher.PublishRoomTransferred(c.Request().Context(), queue.RoomTransferredEvent{
		BookingID: id, BookingNumber: booking.Number, HotelID: h.Cfg.HotelID,
		GuestID: booking.GuestID, FromRoom: fromRoom.Number, ToRoom: toRoom.Number,
		Reason: req.Reason, StaffID: staffID, TransferredAt: now.Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"booking_id": id, "transfer": record,
		"from_room": fromRoom.Number, "to_room": toRoom.Number,
	})
}
