package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"proximity-service/internal/models"
	"proximity-service/internal/service"
	"proximity-service/pkg/response"
)

type UserHandler struct {
	userService   *service.UserService
	relationships *service.RelationshipService
}

func NewUserHandler(userService *service.UserService, relationships *service.RelationshipService) *UserHandler {
	return &UserHandler{userService: userService, relationships: relationships}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	uid := c.MustGet("uid").(string)

	user, err := h.userService.GetProfile(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid := c.MustGet("uid").(string)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	if err := h.userService.UpdateProfile(c.Request.Context(), uid, &req); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile updated"})
}

func (h *UserHandler) UploadAvatar(c *gin.Context) {
	uid := c.MustGet("uid").(string)

	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
		return
	}

	url, err := h.userService.UploadAvatar(c.Request.Context(), uid, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profilePicture": url})
}

// Recommendations lists users the caller might befriend. Full scan
// under the hood, acceptable at current scale.
func (h *UserHandler) Recommendations(c *gin.Context) {
	uid := c.MustGet("uid").(string)

	candidates, err := h.relationships.RecommendedFriends(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]*models.UserResponse, 0, len(candidates))
	for _, candidate := range candidates {
		out = append(out, models.NewUserResponse(candidate))
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": out})
}

func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("/me", h.GetMe)
		users.PUT("/me", h.UpdateProfile)
		users.POST("/me/avatar", h.UploadAvatar)
		users.GET("/recommendations", h.Recommendations)
	}
}
