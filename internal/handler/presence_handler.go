package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"proximity-service/internal/service"
	"proximity-service/pkg/response"
)

type PresenceHandler struct {
	presence *service.PresenceService
}

func NewPresenceHandler(presence *service.PresenceService) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

func (h *PresenceHandler) Online(c *gin.Context) {
	uid := c.MustGet("uid").(string)
	if err := h.presence.SetOnline(c.Request.Context(), uid); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "online"})
}

func (h *PresenceHandler) Offline(c *gin.Context) {
	uid := c.MustGet("uid").(string)
	if err := h.presence.SetOffline(c.Request.Context(), uid); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "offline"})
}

func (h *PresenceHandler) OnlineFriends(c *gin.Context) {
	uid := c.MustGet("uid").(string)
	online, err := h.presence.OnlineFriends(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"online": online})
}

func (h *PresenceHandler) RegisterRoutes(r *gin.RouterGroup) {
	presence := r.Group("/presence")
	{
		presence.POST("/online", h.Online)
		presence.POST("/offline", h.Offline)
		presence.GET("/friends", h.OnlineFriends)
	}
}
