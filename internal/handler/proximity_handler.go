package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"proximity-service/internal/models"
	"proximity-service/internal/service"
	"proximity-service/pkg/response"
)

type ProximityHandler struct {
	proximity *service.ProximityService
}

func NewProximityHandler(proximity *service.ProximityService) *ProximityHandler {
	return &ProximityHandler{proximity: proximity}
}

// UpdateLocation receives a fresh fix from the device's periodic
// location worker, persists it, and runs a proximity evaluation.
func (h *ProximityHandler) UpdateLocation(c *gin.Context) {
	uid := c.MustGet("uid").(string)

	var req models.LocationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	newlyInRange, err := h.proximity.UpdateLocation(c.Request.Context(), uid, req.Latitude, req.Longitude)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]*models.UserResponse, 0, len(newlyInRange))
	for _, friend := range newlyInRange {
		out = append(out, models.NewUserResponse(friend))
	}
	c.JSON(http.StatusOK, gin.H{"newlyInRange": out})
}

func (h *ProximityHandler) GetSettings(c *gin.Context) {
	uid := c.MustGet("uid").(string)
	ctx := c.Request.Context()

	radius, err := h.proximity.Radius(ctx, uid)
	if err != nil {
		response.Error(c, err)
		return
	}
	enabled, err := h.proximity.NotificationsEnabled(ctx, uid)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"radiusMeters":         radius,
		"notificationsEnabled": enabled,
	})
}

func (h *ProximityHandler) UpdateSettings(c *gin.Context) {
	uid := c.MustGet("uid").(string)

	var req struct {
		RadiusMeters         *float64 `json:"radiusMeters"`
		NotificationsEnabled *bool    `json:"notificationsEnabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	ctx := c.Request.Context()
	if req.RadiusMeters != nil {
		if *req.RadiusMeters <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "radius must be positive"})
			return
		}
		if err := h.proximity.SetRadius(ctx, uid, *req.RadiusMeters); err != nil {
			response.Error(c, err)
			return
		}
	}
	if req.NotificationsEnabled != nil {
		if err := h.proximity.SetNotificationsEnabled(ctx, uid, *req.NotificationsEnabled); err != nil {
			response.Error(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "settings updated"})
}

func (h *ProximityHandler) RegisterRoutes(r *gin.RouterGroup) {
	proximity := r.Group("/proximity")
	{
		proximity.POST("/location", h.UpdateLocation)
		proximity.GET("/settings", h.GetSettings)
		proximity.PUT("/settings", h.UpdateSettings)
	}
}
