package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ecoride-campus/service-rental/internal/application"
	"github.com/ecoride-campus/service-rental/internal/domain/profile"
	"github.com/ecoride-campus/service-rental/internal/middleware"
	"github.com/ecoride-campus/service-rental/internal/response"
)

// AdminHandler exposes administration endpoints: fleet management,
// booking oversight, user listing and statistics.
type AdminHandler struct {
	rentals  *application.RentalService
	bikes    *application.BikeService
	profiles *application.ProfileService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(rentals *application.RentalService, bikes *application.BikeService, profiles *application.ProfileService) *AdminHandler {
	return &AdminHandler{rentals: rentals, bikes: bikes, profiles: profiles}
}

// RegisterRoutes registers the admin routes on an authenticated group.
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin", middleware.RequireRole(profile.RoleAdmin))
	{
		admin.GET("/bookings", h.ListAllBookings)
		admin.GET("/stats", h.GetStats)
		admin.GET("/users", h.ListUsers)

		admin.POST("/bikes", h.CreateBike)
		admin.PUT("/bikes/:id", h.UpdateBike)
		admin.DELETE("/bikes/:id", h.DeleteBike)
	}
}

// ListAllBookings handles GET /admin/bookings.
func (h *AdminHandler) ListAllBookings(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.BadRequest(c, "missing authentication context")
		return
	}
	page, limit := parsePagination(c)

	bookings, total, err := h.rentals.ListAllBookings(c.Request.Context(), actor, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, bookings, total, page, limit)
}

// GetStats handles GET /admin/stats.
func (h *AdminHandler) GetStats(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.BadRequest(c, "missing authentication context")
		return
	}

	stats, err := h.rentals.GetStats(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.BadRequest(c, "missing authentication context")
		return
	}
	page, limit := parsePagination(c)

	result, err := h.profiles.ListUsers(c.Request.Context(), actor, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// CreateBike handles POST /admin/bikes.
func (h *AdminHandler) CreateBike(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.BadRequest(c, "missing authentication context")
		return
	}

	var req application.UpsertBikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	dto, err := h.bikes.CreateBike(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto)
}

// UpdateBike handles PUT /admin/bikes/:id.
func (h *AdminHandler) UpdateBike(c *gin.Context) {
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

	var req application.UpsertBikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	dto, err := h.bikes.UpdateBike(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// DeleteBike handles DELETE /admin/bikes/:id.
func (h *AdminHandler) DeleteBike(c *gin.Context) {
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

	if err := h.bikes.DeleteBike(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
