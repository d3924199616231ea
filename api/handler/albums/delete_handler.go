package albums

import (
	"net/http"

	"github.com/anoixa/picshare/api/common"
	"github.com/gin-gonic/gin"
)

// DeleteAlbumHandler 删除相册及其照片
func (h *Handler) DeleteAlbumHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	albumID, ok := parseUintParam(c, "id")
	if !ok {
		common.RespondError(c, http.StatusBadRequest, "Invalid album ID format")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), albumID, userID); err != nil {
		h.respondServiceError(c, err, "Failed to delete album")
		return
	}
	common.RespondSuccessMessage(c, "Album deleted successfully", nil)
}
