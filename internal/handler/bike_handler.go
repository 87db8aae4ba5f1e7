package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ecoride-campus/service-rental/internal/application"
	"github.com/ecoride-campus/service-rental/internal/domain/bike"
	"github.com/ecoride-campus/service-rental/internal/domain/profile"
	"github.com/ecoride-campus/service-rental/internal/middleware"
	"github.com/ecoride-campus/service-rental/internal/response"
)

// BikeHandler exposes fleet browsing over HTTP.
type BikeHandler struct {
	bikes *application.BikeService
}

// NewBikeHandler creates a new BikeHandler.
func NewBikeHandler(bikes *application.BikeService) *BikeHandler {
	return &BikeHandler{bikes: bikes}
}

// RegisterRoutes registers the bike routes on an authenticated group.
func (h *BikeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	bikes := rg.Group("/bikes")
	{
		bikes.GET("", h.ListBikes)
		bikes.GET("/:id", h.GetBike)
		bikes.PATCH("/:id/status", middleware.RequireRole(profile.RoleWarden, profile.RoleAdmin), h.SetBikeStatus)
	}
}

// ListBikes handles GET /bikes. An optional status query narrows the
// listing, e.g. ?status=available for the browse view.
func (h *BikeHandler) ListBikes(c *gin.Context) {
	page, limit := parsePagination(c)

	var status *bike.BikeStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := bike.ParseBikeStatus(raw)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		status = &parsed
	}

	result, err := h.bikes.ListBikes(c.Request.Context(), status, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBike handles GET /bikes/:id.
func (h *BikeHandler) GetBike(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	dto, err := h.bikes.GetBike(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// SetBikeStatus handles PATCH /bikes/:id/status.
func (h *BikeHandler) SetBikeStatus(c *gin.Context) {
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

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	status, err := bike.ParseBikeStatus(req.Status)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.bikes.SetBikeStatus(c.Request.Context(), actor, id, status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}
