// Package router registers the HTTP routes and binds them to their
// middleware: JWT authentication, role enforcement and response caching.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-engine/internal/handler"
	"github.com/iliyamo/hotel-booking-engine/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check for load balancers and
// monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the staff auth endpoints.  Unauthenticated
// operations live under /v1/auth, the identity endpoint under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.POST("/logout", a.Logout)
}

// RegisterBooking registers the booking lifecycle, room administration,
// availability and housekeeping endpoints.  cacheMW may be nil when no
// Redis is configured; the availability route then runs uncached.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, rm *handler.RoomHandler, jwtSecret string, cacheMW echo.MiddlewareFunc) {
	staff := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	// Availability is read-only and safe for every staff role; it is the
	// one endpoint worth caching since the front desk polls it.
	if cacheMW != nil {
		staff.GET("/availability", rm.Availability, cacheMW)
	} else {
		staff.GET("/availability", rm.Availability)
	}

	// The booking lifecycle belongs to the front desk.
	desk := staff.Group("", middleware.RequireRole("MANAGER", "RECEPTION"))
	desk.POST("/bookings", b.Create)
	desk.GET("/bookings", b.List)
	desk.GET("/bookings/:id", b.Get)
	desk.GET("/bookings/:id/audit", b.AuditTrail)
	desk.POST("/bookings/:id/cancel", b.Cancel)
	desk.POST("/bookings/:id/checkin", b.CheckIn)
	desk.POST("/bookings/:id/checkout", b.CheckOut)
	desk.POST("/bookings/:id/transfer", b.Transfer)
	desk.POST("/bookings/:id/payments", b.RecordPayment)
	desk.GET("/bookings/:id/payments", b.ListPayments)

	// Room and room-type administration is a manager concern.
	admin := staff.Group("", middleware.RequireRole("MANAGER"))
	admin.POST("/room-types", rm.CreateRoomType)
	admin.PATCH("/room-types/:id/price", rm.UpdateRoomTypePrice)
	admin.POST("/rooms", rm.CreateRoom)

	// Reading rooms and working the task board includes housekeeping.
	ops := staff.Group("", middleware.RequireRole("MANAGER", "RECEPTION", "HOUSEKEEPING"))
	ops.GET("/room-types", rm.ListRoomTypes)
	ops.GET("/rooms", rm.ListRooms)
	ops.PATCH("/rooms/:id/status", rm.UpdateRoomStatus)
	ops.GET("/housekeeping/tasks", rm.ListHousekeepingTasks)
	ops.POST("/housekeeping/tasks/:id/done", rm.CompleteHousekeepingTask)
}
