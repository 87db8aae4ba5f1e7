package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ecoride-campus/service-rental/internal/application"
	"github.com/ecoride-campus/service-rental/internal/domain"
	"github.com/ecoride-campus/service-rental/internal/domain/profile"
	"github.com/ecoride-campus/service-rental/internal/domain/rental"
	"github.com/ecoride-campus/service-rental/internal/middleware"
	"github.com/ecoride-campus/service-rental/internal/response"
)

// RentalHandler exposes the booking lifecycle over HTTP.
type RentalHandler struct {
	rentals *application.RentalService
}

// NewRentalHandler creates a new RentalHandler.
func NewRentalHandler(rentals *application.RentalService) *RentalHandler {
	return &RentalHandler{rentals: rentals}
}

// RegisterRoutes registers the booking routes on an authenticated group.
func (h *RentalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	bookings := rg.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListMyBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("/:id/receipt", h.GetReceipt)
		bookings.GET("/:id/damage-reports", h.ListDamageReports)

		bookings.POST("/:id/approve", h.ApproveBooking)
		bookings.POST("/:id/reject", middleware.RequireRole(profile.RoleWarden), h.RejectBooking)
		bookings.POST("/:id/activate", middleware.RequireRole(profile.RoleWarden), h.ActivateRental)
		bookings.POST("/:id/return", middleware.RequireRole(profile.RoleWarden), h.ConfirmReturn)
		bookings.POST("/:id/damage", middleware.RequireRole(profile.RoleWarden), h.ReportDamage)
	}

	rg.GET("/queue", middleware.RequireRole(profile.RoleWarden, profile.RoleAdmin), h.GetQueue)
	rg.GET("/receipts", h.ListMyReceipts)
}

// CreateBooking handles POST /bookings.
func (h *RentalHandler) CreateBooking(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.BadRequest(c, "missing authentication context")
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	dto, err := h.rentals.CreateBooking(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto)
}

// ListMyBookings handles GET /bookings.
func (h *RentalHandler) ListMyBookings(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.BadRequest(c, "missing authentication context")
		return
	}
	page, limit := parsePagination(c)

	result, err := h.rentals.GetRenterBookings(c.Request.Context(), actor, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBooking handles GET /bookings/:id.
func (h *RentalHandler) GetBooking(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.BadRequest(c, "missing authentication context")
		return
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	dto, err := h.rentals.GetBooking(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// ApproveBooking handles POST /bookings/:id/approve. Wardens and admins
// record approvals on their own track; renters are rejected by the
// service's authorization policy.
func (h *RentalHandler) ApproveBooking(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.BadRequest(c, "missing authentication context")
		return
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var dto *application.BookingDTO
	switch actor.Role {
	case profile.RoleAdmin:
		dto, err = h.rentals.ApproveAsAdmin(c.Request.Context(), actor, id)
	default:
		dto, err = h.rentals.ApproveAsWarden(c.Request.Context(), actor, id)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// RejectBooking handles POST /bookings/:id/reject.
func (h *RentalHandler) RejectBooking(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.BadRequest(c, "missing authentication context")
		return
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	dto, err := h.rentals.RejectAsWarden(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// ActivateRental handles POST /bookings/:id/activate.
func (h *RentalHandler) ActivateRental(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.BadRequest(c, "missing authentication context")
		return
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	dto, err := h.rentals.ActivateRental(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// ConfirmReturn handles POST /bookings/:id/return.
func (h *RentalHandler) ConfirmReturn(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.BadRequest(c, "missing authentication context")
		return
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.rentals.ConfirmReturn(c.Request.Context(), actor, id, time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ReportDamage handles POST /bookings/:id/damage.
func (h *RentalHandler) ReportDamage(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.BadRequest(c, "missing authentication context")
		return
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req application.ReportDamageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	dto, err := h.rentals.ReportDamage(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto)
}

// GetQueue handles GET /queue. Wardens see pending bookings awaiting
// review by default; a status filter narrows or widens the view.
func (h *RentalHandler) GetQueue(c *gin.Context) {
	page, limit := parsePagination(c)

	statuses := []rental.BookingStatus{rental.StatusPending}
	if raw := c.Query("status"); raw != "" {
		status, err := rental.ParseBookingStatus(raw)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		statuses = []rental.BookingStatus{status}
	}

	result, err := h.rentals.GetQueue(c.Request.Context(), statuses, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetReceipt handles GET /bookings/:id/receipt.
func (h *RentalHandler) GetReceipt(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.BadRequest(c, "missing authentication context")
		return
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	dto, err := h.rentals.GetReceipt(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// ListMyReceipts handles GET /receipts.
func (h *RentalHandler) ListMyReceipts(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.BadRequest(c, "missing authentication context")
		return
	}
	page, limit := parsePagination(c)

	result, err := h.rentals.GetRenterReceipts(c.Request.Context(), actor, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// ListDamageReports handles GET /bookings/:id/damage-reports.
func (h *RentalHandler) ListDamageReports(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.BadRequest(c, "missing authentication context")
		return
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	reports, err := h.rentals.GetDamageReports(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reports)
}

// --- Helpers ---

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("invalid " + name + " parameter")
	}
	return id, nil
}

func parsePagination(c *gin.Context) (page, limit int) {
	page = 1
	limit = 20

	if raw := c.Query("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page = v
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
