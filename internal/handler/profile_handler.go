package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ecoride-campus/service-rental/internal/application"
	"github.com/ecoride-campus/service-rental/internal/middleware"
	"github.com/ecoride-campus/service-rental/internal/response"
)

// ProfileHandler exposes the caller's own profile.
type ProfileHandler struct {
	profiles *application.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles *application.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// RegisterRoutes registers the profile routes on an authenticated group.
func (h *ProfileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.GetMe)
}

// GetMe handles GET /me.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.BadRequest(c, "missing authentication context")
		return
	}

	dto, err := h.profiles.GetProfile(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}
