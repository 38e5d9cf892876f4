package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-engine/internal/availability"
	"github.com/iliyamo/hotel-booking-engine/internal/config"
	"github.com/iliyamo/hotel-booking-engine/internal/ledger"
	"github.com/iliyamo/hotel-booking-engine/internal/model"
	"github.com/iliyamo/hotel-booking-engine/internal/repository"
	"github.com/iliyamo/hotel-booking-engine/internal/state"
)

// BookingHandler owns the booking lifecycle: creation, views,
// cancellation, check-in, checkout, transfers and payments.  Every
// mutating operation runs in a single transaction that locks the booking
// row first, so concurrent operations on the same booking serialize.
type BookingHandler struct {
	Cfg          config.Config
	Bookings     *repository.BookingRepo
	Assignments  *repository.AssignmentRepo
	Rooms        *repository.RoomRepo
	Guests       *repository.GuestRepo
	Payments     *repository.PaymentRepo
	Transfers    *repository.TransferRepo
	Housekeeping *repository.HousekeepingRepo
	Audit        *repository.AuditRepo
}

func NewBookingHandler(cfg config.Config, b *repository.BookingRepo, a *repository.AssignmentRepo,
	rm *repository.RoomRepo, g *repository.GuestRepo, p *repository.PaymentRepo,
	tr *repository.TransferRepo, hk *repository.HousekeepingRepo, au *repository.AuditRepo) *BookingHandler {
	return &BookingHandler{Cfg: cfg, Bookings: b, Assignments: a, Rooms: rm, Guests: g,
		Payments: p, Transfers: tr, Housekeeping: hk, Audit: au}
}

// ----- DTOs -----

type guestReq struct {
	FullName string        `json:"full_name"`
	Phone    string        `json:"phone"`
	Email    string        `json:"email"`
	Address  model.Address `json:"address"`
	IDProof  string        `json:"id_proof"`
}

type roomStayReq struct {
	RoomID      uint64 `json:"room_id"`
	CheckIn     string `json:"check_in"`      // YYYY-MM-DD
	CheckOut    string `json:"check_out"`     // YYYY-MM-DD
	ExpectedIn  string `json:"expected_in"`   // HH:MM, same-day stays
	ExpectedOut string `json:"expected_out"`  // HH:MM, same-day stays
	RatePaise   int64  `json:"rate_paise"`    // 0 -> room's base price
}

type advanceReq struct {
	AmountPaise int64  `json:"amount_paise"`
	Method      string `json:"method"`
}

type createBookingReq struct {
	Guest           guestReq      `json:"guest"`
	ArrivalType     string        `json:"arrival_type"` // walk_in | phone | online
	MealPlan        string        `json:"meal_plan"`    // EP | CP | MAP | AP
	Adults          uint32        `json:"adults"`
	Children        uint32        `json:"children"`
	ExtraPax        uint32        `json:"extra_pax"`
	SpecialRequests string        `json:"special_requests"`
	Rooms           []roomStayReq `json:"rooms"`
	TotalPaise      int64         `json:"total_paise"` // optional caller-supplied grand total, 0 -> derive
	Advance         *advanceReq   `json:"advance"`
	Confirmed       *bool         `json:"confirmed"` // nil/true -> confirmed, false -> pending
}

type bookingResp struct {
	Booking     *model.Booking          `json:"booking"`
	Guest       *model.Guest            `json:"guest,omitempty"`
	Assignments []model.RoomAssignment  `json:"assignments"`
	Breakdown   *model.PaymentBreakdown `json:"breakdown,omitempty"`
	Transfers   []model.TransferRecord  `json:"transfers,omitempty"`
}

// parsedStay is one validated room line of a create request.
type parsedStay struct {
	roomID    uint64
	checkIn   time.Time
	checkOut  time.Time
	inAt      *time.Time
	outAt     *time.Time
	ratePaise int64
}

func parseStays(rooms []roomStayReq) ([]parsedStay, error) {
	if len(rooms) == 0 {
		return nil, fmt.Errorf("at least one room is required")
	}
	out := make([]parsedStay, 0, len(rooms))
	seen := make(map[uint64]bool, len(rooms))
	for i, rq := range rooms {
		if rq.RoomID == 0 {
			return nil, fmt.Errorf("rooms[%d]: room_id required", i)
		}
		if seen[rq.RoomID] {
			return nil, fmt.Errorf("rooms[%d]: room %d listed twice", i, rq.RoomID)
		}
		seen[rq.RoomID] = true
		ci, err := parseDate(rq.CheckIn)
		if err != nil {
			return nil, fmt.Errorf("rooms[%d]: invalid check_in", i)
		}
		co, err := parseDate(rq.CheckOut)
		if err != nil {
			return nil, fmt.Errorf("rooms[%d]: invalid check_out", i)
		}
		if co.Before(ci) {
			return nil, fmt.Errorf("rooms[%d]: check_out before check_in", i)
		}
		inAt, err := parseClockOn(ci, rq.ExpectedIn)
		if err != nil {
			return nil, fmt.Errorf("rooms[%d]: invalid expected_in", i)
		}
		outAt, err := parseClockOn(co, rq.ExpectedOut)
		if err != nil {
			return nil, fmt.Errorf("rooms[%d]: invalid expected_out", i)
		}
		if ci.Equal(co) && inAt != nil && outAt != nil && !inAt.Before(*outAt) {
			return nil, fmt.Errorf("rooms[%d]: expected_in must be before expected_out on a same-day stay", i)
		}
		if rq.RatePaise < 0 {
			return nil, fmt.Errorf("rooms[%d]: negative rate", i)
		}
		out = append(out, parsedStay{roomID: rq.RoomID, checkIn: ci, checkOut: co,
			inAt: inAt, outAt: outAt, ratePaise: rq.RatePaise})
	}
	return out, nil
}

func validArrivalType(s string) bool {
	switch s {
	case "walk_in", "phone", "online":
		return true
	}
	return false
}

func validMealPlan(s string) bool {
	switch s {
	case "EP", "CP", "MAP", "AP":
		return true
	}
	return false
}

// Create books one or more rooms for a guest.  Guest upsert, conflict
// checks, assignment inserts, ledger creation, advance recording, room
// status moves and the audit entry all commit atomically; two requests
// racing for the same room serialize on the locked assignment rows and
// the loser gets a 409.
func (h *BookingHandler) Create(c echo.Context) error {
	staffID, err := actorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Guest.FullName = strings.TrimSpace(req.Guest.FullName)
	req.Guest.Phone = strings.TrimSpace(req.Guest.Phone)
	if req.Guest.FullName == "" || req.Guest.Phone == "" {
		return badRequest(c, "guest full_name and phone required")
	}
	if !validArrivalType(req.ArrivalType) {
		return badRequest(c, "arrival_type must be walk_in, phone or online")
	}
	if req.MealPlan == "" {
		req.MealPlan = "EP"
	}
	if !validMealPlan(req.MealPlan) {
		return badRequest(c, "meal_plan must be EP, CP, MAP or AP")
	}
	if req.Adults == 0 {
		return badRequest(c, "at least one adult required")
	}
	stays, err := parseStays(req.Rooms)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if req.Advance != nil {
		if req.Advance.AmountPaise <= 0 {
			return badRequest(c, "advance amount must be positive")
		}
		if !model.ValidMethod(model.PaymentMethod(req.Advance.Method)) {
			return badRequest(c, "unknown advance method")
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

	// Guest: find or create by phone, refreshing details.
	var email *string
	if e := strings.TrimSpace(req.Guest.Email); e != "" {
		email = &e
	}
	var idProof *string
	if p := strings.TrimSpace(req.Guest.IDProof); p != "" {
		idProof = &p
	}
	addr := req.Guest.Address
	addr.Normalize()
	guest := model.Guest{HotelID: h.Cfg.HotelID, FullName: req.Guest.FullName,
		Phone: req.Guest.Phone, Email: email, Address: addr, IDProof: idProof}
	if err := h.Guests.UpsertByPhoneTx(ctx, tx, &guest); err != nil {
		return fail(c, err)
	}

	now := time.Now().UTC()
	number, err := repository.NewBookingNumber(now)
	if err != nil {
		return fail(c, err)
	}
	status := state.BookingConfirmed
	if req.Confirmed != nil && !*req.Confirmed {
		status = state.BookingPending
	}
	var special *string
	if s := strings.TrimSpace(req.SpecialRequests); s != "" {
		special = &s
	}
	booking := model.Booking{
		HotelID: h.Cfg.HotelID, Number: number, GuestID: guest.ID, StaffID: staffID,
		Status: status, ArrivalType: req.ArrivalType, MealPlan: req.MealPlan,
		Adults: req.Adults, Children: req.Children, ExtraPax: req.ExtraPax,
		SpecialRequests: special,
	}
	if err := h.Bookings.CreateTx(ctx, tx, &booking); err != nil {
		return fail(c, err)
	}

	// Rooms: lock, overlap-check and build assignments.
	assignments := make([]model.RoomAssignment, 0, len(stays))
	var basePaise int64
	for _, st := range stays {
		room, err := h.Rooms.GetForUpdateTx(ctx, tx, h.Cfg.HotelID, st.roomID)
		if err != nil {
			return fail(c, err)
		}
		if !room.IsActive {
			return fail(c, repository.Conflictf("room %s is not in service", room.Number))
		}
		if room.Status == state.RoomMaintenance || room.Status == state.RoomBlocked {
			return fail(c, repository.Conflictf("room %s is %s", room.Number, room.Status))
		}
		candidate := availability.Stay{CheckIn: st.checkIn, CheckOut: st.checkOut, InTime: st.inAt, OutTime: st.outAt}
		existing, err := h.Assignments.FindConflictCandidatesTx(ctx, tx, st.roomID, st.checkIn, st.checkOut)
		if err != nil {
			return fail(c, err)
		}
		for i := range existing {
			if availability.Conflicts(repository.Stay(&existing[i]), candidate) {
				return fail(c, repository.Conflictf("room %s already booked for the requested dates", room.Number))
			}
		}
		rate := st.ratePaise
		if rate == 0 {
			rate = room.BasePricePaise
		}
		nights := ledger.Nights(st.checkIn, st.checkOut)
		total := ledger.RoomTotal(rate, nights)
		basePaise += total
		assignments = append(assignments, model.RoomAssignment{
			BookingID: booking.ID, RoomID: st.roomID,
			CheckInDate: st.checkIn, CheckOutDate: st.checkOut,
			ExpectedInAt: st.inAt, ExpectedOutAt: st.outAt,
			Status: state.AssignmentReserved, RatePaise: rate,
			ExpectedNights: nights, RoomTotalPaise: total,
		})
		// Mark the room reserved when its current state allows; a room
		// holding an unrelated future booking keeps its present state.
		if state.CanRoomTransition(room.Status, state.RoomReserved) {
			if err := h.Rooms.UpdateStatusTx(ctx, tx, room.ID, state.RoomReserved); err != nil {
				return fail(c, err)
			}
		}
	}
	if err := h.Assignments.CreateBulkTx(ctx, tx, assignments); err != nil {
		return fail(c, err)
	}

	// Ledger: derive the taxed total and reconcile any supplied figure.
	tt, err := ledger.ReconcileGrandTotal(basePaise, req.TotalPaise, h.Cfg.TaxRates)
	if err != nil {
		return badRequest(c, err.Error())
	}
	breakdown := ledger.NewBreakdown(booking.ID, tt)
	if req.Advance != nil {
		method := model.PaymentMethod(req.Advance.Method)
		if err := ledger.ApplyPayment(&breakdown, req.Advance.AmountPaise, method, model.KindAdvance); err != nil {
			return badRequest(c, err.Error())
		}
		txn := model.PaymentTransaction{BookingID: booking.ID, AmountPaise: req.Advance.AmountPaise,
			Method: method, Kind: model.KindAdvance, StaffID: staffID, Status: "completed"}
		if err := h.Payments.InsertTransactionTx(ctx, tx, &txn); err != nil {
			return fail(c, err)
		}
	}
	if err := h.Payments.CreateTx(ctx, tx, &breakdown); err != nil {
		return fail(c, err)
	}

	if err := h.Audit.CreateTx(ctx, tx, &model.AuditEntry{
		HotelID: h.Cfg.HotelID, ActorID: staffID, Action: "booking.create",
		EntityType: "booking", EntityID: booking.ID,
		Detail: fmt.Sprintf("booking %s: %d room(s), base %d paise, grand %d paise", number, len(assignments), basePaise, tt.GrandTotalPaise),
	}); err != nil {
		return fail(c, err)
	}

	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}
	committed = true

	return c.JSON(http.StatusCreated, bookingResp{
		Booking: &booking, Guest: &guest, Assignments: assignments, Breakdown: &breakdown,
	})
}

// Get returns a booking with its guest, assignments, ledger and transfer
// history.
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	booking, err := h.Bookings.GetByID(ctx, h.Cfg.HotelID, id)
	if err != nil {
		return fail(c, err)
	}
	guest, err := h.Guests.GetByID(ctx, h.Cfg.HotelID, booking.GuestID)
	if err != nil && err != repository.ErrNotFound {
		return fail(c, err)
	}
	assignments, err := h.Assignments.ListByBooking(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	breakdown, err := h.Payments.GetByBooking(ctx, id)
	if err != nil && err != repository.ErrNotFound {
		return fail(c, err)
	}
	transfers, err := h.Transfers.ListByBooking(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, bookingResp{
		Booking: booking, Guest: guest, Assignments: assignments,
		Breakdown: breakdown, Transfers: transfers,
	})
}

// List returns the hotel's bookings, optionally filtered by ?status=.
func (h *BookingHandler) List(c echo.Context) error {
	status := state.BookingStatus(c.QueryParam("status"))
	limit := 0
	if s := c.QueryParam("limit"); s != "" {
		fmt.Sscanf(s, "%d", &limit)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	bookings, err := h.Bookings.ListByHotel(ctx, h.Cfg.HotelID, status, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// AuditTrail returns the audit history of one booking.
func (h *BookingHandler) AuditTrail(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	entries, err := h.Audit.ListByEntity(ctx, h.Cfg.HotelID, "booking", id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"audit": entries})
}

type cancelReq struct {
	Reason string `json:"reason"`
}

// Cancel cancels a booking before arrival.  Reserved assignments move to
// cancelled and their rooms are released; a booking with any stay already
// begun cannot be cancelled (that is a checkout).
func (h *BookingHandler) Cancel(c echo.Context) error {
	staffID, err := actorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req cancelReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" {
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
	if err := state.ValidateBookingTransition(booking.Status, state.BookingCancelled); err != nil {
		return fail(c, err)
	}
	assignments, err := h.Assignments.ListByBookingTx(ctx, tx, id)
	if err != nil {
		return fail(c, err)
	}
	for i := range assignments {
		if assignments[i].ActualCheckIn != nil {
			return fail(c, repository.Conflictf("guest already arrived; cancellation is not possible"))
		}
	}
	released, err := h.Assignments.CancelReservedTx(ctx, tx, id)
	if err != nil {
		return fail(c, err)
	}
	if err := h.releaseRoomsTx(ctx, tx, released); err != nil {
		return fail(c, err)
	}
	now := time.Now().UTC()
	if err := h.Bookings.CancelTx(ctx, tx, id, req.Reason, staffID, now); err != nil {
		return fail(c, err)
	}
	if err := h.Audit.CreateTx(ctx, tx, &model.AuditEntry{
		HotelID: h.Cfg.HotelID, ActorID: staffID, Action: "booking.cancel",
		EntityType: "booking", EntityID: id,
		Detail: fmt.Sprintf("booking %s cancelled: %s", booking.Number, req.Reason),
	}); err != nil {
		return fail(c, err)
	}
	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{
		"booking_id": id, "status": state.BookingCancelled, "released_rooms": released,
	})
}

// releaseRoomsTx moves each released room back to available where the
// transition table allows it.
func (h *BookingHandler) releaseRoomsTx(ctx context.Context, tx *sql.Tx, roomIDs []uint64) error {
	for _, roomID := range roomIDs {
		room, err := h.Rooms.GetForUpdateTx(ctx, tx, h.Cfg.HotelID, roomID)
		if err != nil {
			return err
		}
		if state.CanRoomTransition(room.Status, state.RoomAvailable) {
			if err := h.Rooms.UpdateStatusTx(ctx, tx, roomID, state.RoomAvailable); err != nil {
				return err
			}
		}
	}
	return nil
}
