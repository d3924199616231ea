package albums

import (
	"net/http"
	"strings"

	"github.com/anoixa/picshare/api/common"
	"github.com/gin-gonic/gin"
)

// ViewSharedAlbumHandler 访客按分享码查看相册
func (h *Handler) ViewSharedAlbumHandler(c *gin.Context) {
	shareCode := strings.TrimSpace(c.Param("shareCode"))
	if shareCode == "" || len(shareCode) > 32 {
		common.RespondError(c, http.StatusNotFound, "Album not found")
		return
	}

	album, err := h.svc.ViewPublic(c.Request.Context(), shareCode, clientOf(c))
	if err != nil {
		h.respondServiceError(c, err, "Failed to load album")
		return
	}
	common.RespondSuccess(c, album)
}

// DownloadPhotoHandler 返回原图下载地址并记录一次下载
func (h *Handler) DownloadPhotoHandler(c *gin.Context) {
	shareCode := strings.TrimSpace(c.Param("shareCode"))
	photoID, ok := parseUintParam(c, "photoId")
	if shareCode == "" || !ok {
		common.RespondError(c, http.StatusBadRequest, "Invalid photo ID format")
		return
	}

	download, err := h.svc.DownloadPhoto(c.Request.Context(), shareCode, photoID, clientOf(c))
	if err != nil {
		h.respondServiceError(c, err, "Failed to download photo")
		return
	}
	common.RespondSuccess(c, download)
}
