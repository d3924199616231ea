package albums

import (
	"net/http"

	"github.com/anoixa/picshare/api/common"
	"github.com/gin-gonic/gin"
)

type updateAlbumRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=255"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

type extendExpiryRequest struct {
	ExpiresInHours int `json:"expiresInHours" binding:"required,min=1"`
}

// UpdateAlbumHandler 修改相册标题或描述
func (h *Handler) UpdateAlbumHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	albumID, ok := parseUintParam(c, "id")
	if !ok {
		common.RespondError(c, http.StatusBadRequest, "Invalid album ID format")
		return
	}

	var req updateAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	album, err := h.svc.Update(c.Request.Context(), albumID, userID, req.Title, req.Description)
	if err != nil {
		h.respondServiceError(c, err, "Failed to update album")
		return
	}
	common.RespondSuccessMessage(c, "Album updated successfully", album)
}

// ExtendExpiryHandler 延长相册有效期，已过期但未清理的相册会恢复为可访问
func (h *Handler) ExtendExpiryHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	albumID, ok := parseUintParam(c, "id")
	if !ok {
		common.RespondError(c, http.StatusBadRequest, "Invalid album ID format")
		return
	}

	var req extendExpiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "expiresInHours must be a positive integer")
		return
	}

	album, err := h.svc.ExtendExpiry(c.Request.Context(), albumID, userID, req.ExpiresInHours)
	if err != nil {
		h.respondServiceError(c, err, "Failed to extend album expiry")
		return
	}
	common.RespondSuccessMessage(c, "Album expiry extended", album)
}
