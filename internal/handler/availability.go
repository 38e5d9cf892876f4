package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-engine/internal/availability"
	"github.com/iliyamo/hotel-booking-engine/internal/repository"
	"github.com/iliyamo/hotel-booking-engine/internal/state"
)

type availableRoom struct {
	RoomID         uint64           `json:"room_id"`
	Number         string           `json:"number"`
	RoomTypeID     uint64           `json:"room_type_id"`
	Status         state.RoomStatus `json:"status"`
	BasePricePaise int64            `json:"base_price_paise"`
}

// Availability lists the rooms free for a date range.  A room qualifies
// when it is in service, not under maintenance or blocked, and has no
// active assignment overlapping the range under the half-open rule.
// The route is cached; a stale hit only risks a friendlier 409 at
// booking time, where the locked conflict check decides for real.
func (h *RoomHandler) Availability(c echo.Context) error {
	checkIn, err := parseDate(c.QueryParam("check_in"))
	if err != nil {
		return badRequest(c, "check_in required as YYYY-MM-DD")
	}
	checkOut, err := parseDate(c.QueryParam("check_out"))
	if err != nil {
		return badRequest(c, "check_out required as YYYY-MM-DD")
	}
	if checkOut.Before(checkIn) {
		return badRequest(c, "check_out before check_in")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rooms, err := h.Rooms.ListByHotel(ctx, h.Cfg.HotelID, "")
	if err != nil {
		return fail(c, err)
	}
	candidate := availability.Stay{CheckIn: checkIn, CheckOut: checkOut}
	free := make([]availableRoom, 0, len(rooms))
	for i := range rooms {
		rm := &rooms[i]
		if rm.Status == state.RoomMaintenance || rm.Status == state.RoomBlocked {
			continue
		}
		existing, err := h.Assignments.FindConflictCandidates(ctx, rm.ID, checkIn, checkOut)
		if err != nil {
			return fail(c, err)
		}
		conflicted := false
		for j := range existing {
			if availability.Conflicts(repository.Stay(&existing[j]), candidate) {
				conflicted = true
				break
			}
		}
		if !conflicted {
			free = append(free, availableRoom{RoomID: rm.ID, Number: rm.Number,
				RoomTypeID: rm.RoomTypeID, Status: rm.Status, BasePricePaise: rm.BasePricePaise})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"check_in":  checkIn.Format("2006-01-02"),
		"check_out": checkOut.Format("2006-01-02"),
		"rooms":     free,
	})
}
