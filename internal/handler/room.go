package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-engine/internal/config"
	"github.com/iliyamo/hotel-booking-engine/internal/model"
	"github.com/iliyamo/hotel-booking-engine/internal/queue"
	"github.com/iliyamo/hotel-booking-engine/internal/repository"
	queue_publisher "github.com/iliyamo/hotel-booking-engine/internal/service"
	"github.com/iliyamo/hotel-booking-engine/internal/state"
)

// RoomHandler owns room and room-type administration plus the
// housekeeping task board.
type RoomHandler struct {
	Cfg          config.Config
	Rooms        *repository.RoomRepo
	RoomTypes    *repository.RoomTypeRepo
	Assignments  *repository.AssignmentRepo
	Housekeeping *repository.HousekeepingRepo
	Audit        *repository.AuditRepo
}

func NewRoomHandler(cfg config.Config, rm *repository.RoomRepo, rt *repository.RoomTypeRepo,
	a *repository.AssignmentRepo, hk *repository.HousekeepingRepo, au *repository.AuditRepo) *RoomHandler {
	return &RoomHandler{Cfg: cfg, Rooms: rm, RoomTypes: rt, Assignments: a, Housekeeping: hk, Audit: au}
}

// ----- room types -----

type roomTypeReq struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	BasePricePaise int64  `json:"base_price_paise"`
	Capacity       uint32 `json:"capacity"`
}

func (h *RoomHandler) CreateRoomType(c echo.Context) error {
	var req roomTypeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	req.Name = strings.TrimSpace(req.Name)
	if req.Code == "" || req.Name == "" {
		return badRequest(c, "code and name required")
	}
	if req.BasePricePaise <= 0 {
		return badRequest(c, "base_price_paise must be positive")
	}
	if req.Capacity == 0 {
		req.Capacity = 2
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rt := model.RoomType{HotelID: h.Cfg.HotelID, Code: req.Code, Name: req.Name,
		BasePricePaise: req.BasePricePaise, Capacity: req.Capacity}
	if err := h.RoomTypes.Create(ctx, &rt); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, rt)
}

func (h *RoomHandler) ListRoomTypes(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	types, err := h.RoomTypes.List(ctx, h.Cfg.HotelID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"room_types": types})
}

type priceReq struct {
	BasePricePaise int64 `json:"base_price_paise"`
	SyncRooms      bool  `json:"sync_rooms"`
}

// UpdateRoomTypePrice changes a room type's base price.  With sync_rooms
// the new price also lands on the type's rooms; existing assignments keep
// the rate they snapshotted at reservation time either way.
func (h *RoomHandler) UpdateRoomTypePrice(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req priceReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.BasePricePaise <= 0 {
		return badRequest(c, "base_price_paise must be positive")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.RoomTypes.UpdatePrice(ctx, h.Cfg.HotelID, id, req.BasePricePaise, req.SyncRooms); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"room_type_id": id, "base_price_paise": req.BasePricePaise, "synced": req.SyncRooms})
}

// ----- rooms -----

type roomReq struct {
	RoomTypeID     uint64 `json:"room_type_id"`
	Number         string `json:"number"`
	BasePricePaise int64  `json:"base_price_paise"` // 0 -> inherit from the type
}

func (h *RoomHandler) CreateRoom(c echo.Context) error {
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Number = strings.TrimSpace(req.Number)
	if req.RoomTypeID == 0 || req.Number == "" {
		return badRequest(c, "room_type_id and number required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rt, err := h.RoomTypes.GetByID(ctx, h.Cfg.HotelID, req.RoomTypeID)
	if err != nil {
		return fail(c, err)
	}
	price := req.BasePricePaise
	if price == 0 {
		price = rt.BasePricePaise
	}
	room := model.Room{HotelID: h.Cfg.HotelID, RoomTypeID: rt.ID, Number: req.Number,
		Status: state.RoomAvailable, BasePricePaise: price, IsActive: true}
	if err := h.Rooms.Create(ctx, &room); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// ListRooms returns the hotel's rooms, optionally filtered by ?status=.
func (h *RoomHandler) ListRooms(c echo.Context) error {
	status := state.RoomStatus(c.QueryParam("status"))
	if status != "" && !state.ValidRoomStatus(status) {
		return badRequest(c, "unknown room status")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	rooms, err := h.Rooms.ListByHotel(ctx, h.Cfg.HotelID, status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": rooms})
}

type roomStatusReq struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// UpdateRoomStatus moves a room through its state machine manually
// (housekeeping and maintenance flows).  A room with a guest checked in
// never leaves occupied this way; that only happens through checkout or
// transfer.  Entering cleaning or maintenance raises a housekeeping task.
func (h *RoomHandler) UpdateRoomStatus(c echo.Context) error {
	staffID, err := actorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req roomStatusReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	to := state.RoomStatus(req.Status)
	if !state.ValidRoomStatus(to) {
		return badRequest(c, "unknown room status")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tx, err := h.Rooms.DB().BeginTx(ctx, nil)
	if err != nil {
		return fail(c, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	room, err := h.Rooms.GetForUpdateTx(ctx, tx, h.Cfg.HotelID, id)
	if err != nil {
		return fail(c, err)
	}
	if room.Status == state.RoomOccupied {
		n, err := h.Rooms.ActiveStayCountTx(ctx, tx, id)
		if err != nil {
			return fail(c, err)
		}
		if n > 0 {
			return fail(c, repository.Conflictf("room %s has a guest checked in", room.Number))
		}
	}
	if err := state.ValidateRoomTransition(room.Status, to); err != nil {
		return fail(c, err)
	}
	if err := h.Rooms.UpdateStatusTx(ctx, tx, id, to); err != nil {
		return fail(c, err)
	}

	var task *model.HousekeepingTask
	if follow, ok := state.HousekeepingFor(to); ok {
		task = &model.HousekeepingTask{HotelID: h.Cfg.HotelID, RoomID: id,
			Kind: follow.Kind, Priority: follow.Priority,
			EstimatedMinutes: uint32(follow.EstimatedMinutes), CreatedBy: staffID}
		if err := h.Housekeeping.CreateTx(ctx, tx, task); err != nil {
			return fail(c, err)
		}
	}

	detail := fmt.Sprintf("room %s: %s -> %s", room.Number, room.Status, to)
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		detail += " (" + reason + ")"
	}
	if err := h.Audit.CreateTx(ctx, tx, &model.AuditEntry{
		HotelID: h.Cfg.HotelID, ActorID: staffID, Action: "room.status",
		EntityType: "room", EntityID: id,
		Detail: detail,
	}); err != nil {
		return fail(c, err)
	}

	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}
	committed = true

	if task != nil {
		_ = queue_publisher.PublishHousekeepingTask(c.Request().Context(), queue.HousekeepingTaskEvent{
			TaskID: task.ID, HotelID: h.Cfg.HotelID, RoomNumber: room.Number,
			Kind: task.Kind, Priority: task.Priority,
			EstimatedMinutes: int(task.EstimatedMinutes),
			CreatedAt:        time.Now().UTC().Format(time.RFC3339),
		})
	}

	resp := echo.Map{"room_id": id, "from": room.Status, "to": to}
	if task != nil {
		resp["housekeeping_task"] = task
	}
	return c.JSON(http.StatusOK, resp)
}

// ----- housekeeping board -----

func (h *RoomHandler) ListHousekeepingTasks(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	tasks, err := h.Housekeeping.ListOpen(ctx, h.Cfg.HotelID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": tasks})
}

func (h *RoomHandler) CompleteHousekeepingTask(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Housekeeping.MarkDone(ctx, h.Cfg.HotelID, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"task_id": id, "status": "done"})
}
