package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"proximity-service/internal/models"
	"proximity-service/internal/service"
	"proximity-service/pkg/response"
)

// FriendHandler exposes the relationship transitions. Every mutation
// goes through the relationship service; the handlers only translate
// HTTP to engine calls.
type FriendHandler struct {
	relationships *service.RelationshipService
}

func NewFriendHandler(relationships *service.RelationshipService) *FriendHandler {
	return &FriendHandler{relationships: relationships}
}

type friendInput struct {
	FriendUID string `json:"friendUid" binding:"required"`
}

func (h *FriendHandler) bind(c *gin.Context) (uid, fid string, ok bool) {
	uid = c.MustGet("uid").(string)
	var input friendInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return "", "", false
	}
	return uid, input.FriendUID, true
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	uid, fid, ok := h.bind(c)
	if !ok {
		return
	}
	if err := h.relationships.SendFriendRequest(c.Request.Context(), uid, fid); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend request sent"})
}

func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	uid, fid, ok := h.bind(c)
	if !ok {
		return
	}
	if err := h.relationships.AcceptFriendRequest(c.Request.Context(), uid, fid); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend request accepted"})
}

func (h *FriendHandler) DeclineRequest(c *gin.Context) {
	uid, fid, ok := h.bind(c)
	if !ok {
		return
	}
	if err := h.relationships.DeleteFriendRequest(c.Request.Context(), uid, fid); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend request removed"})
}

func (h *FriendHandler) Unfriend(c *gin.Context) {
	uid, fid, ok := h.bind(c)
	if !ok {
		return
	}
	if err := h.relationships.DeleteFriend(c.Request.Context(), uid, fid); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend removed"})
}

func (h *FriendHandler) Block(c *gin.Context) {
	uid, fid, ok := h.bind(c)
	if !ok {
		return
	}
	if err := h.relationships.BlockUser(c.Request.Context(), uid, fid); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user blocked"})
}

func (h *FriendHandler) Unblock(c *gin.Context) {
	uid, fid, ok := h.bind(c)
	if !ok {
		return
	}
	if err := h.relationships.UnblockUser(c.Request.Context(), uid, fid); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user unblocked"})
}

func (h *FriendHandler) ShareLocation(c *gin.Context) {
	uid, fid, ok := h.bind(c)
	if !ok {
		return
	}
	if err := h.relationships.ShareLocation(c.Request.Context(), uid, fid); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "location shared"})
}

func (h *FriendHandler) StopSharingLocation(c *gin.Context) {
	uid, fid, ok := h.bind(c)
	if !ok {
		return
	}
	if err := h.relationships.StopSharingLocation(c.Request.Context(), uid, fid); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "location sharing stopped"})
}

func (h *FriendHandler) ListFriends(c *gin.Context) {
	uid := c.MustGet("uid").(string)

	friends, err := h.relationships.Friends(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]*models.UserResponse, 0, len(friends))
	for _, friend := range friends {
		out = append(out, models.NewUserResponse(friend))
	}
	c.JSON(http.StatusOK, gin.H{"friends": out})
}

func (h *FriendHandler) RegisterRoutes(r *gin.RouterGroup) {
	friends := r.Group("/friends")
	{
		friends.GET("/", h.ListFriends)
		friends.POST("/requests", h.SendRequest)
		friends.POST("/requests/accept", h.AcceptRequest)
		friends.POST("/requests/decline", h.DeclineRequest)
		friends.POST("/unfriend", h.Unfriend)
		friends.POST("/block", h.Block)
		friends.POST("/unblock", h.Unblock)
		friends.POST("/share-location", h.ShareLocation)
		friends.POST("/stop-sharing-location", h.StopSharingLocation)
	}
}
