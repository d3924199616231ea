package albums

import (
	"net/http"
	"strconv"

	"github.com/anoixa/picshare/api/common"
	"github.com/anoixa/picshare/database/models"
	svcAlbums "github.com/anoixa/picshare/internal/albums"
	"github.com/gin-gonic/gin"
)

// AlbumDetailResponse 相册详情响应
type AlbumDetailResponse struct {
	*svcAlbums.AlbumView
	Photos []*models.Photo `json:"photos"`
}

// GetAlbumDetailHandler 获取相册详情
func (h *Handler) GetAlbumDetailHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	albumID, ok := parseUintParam(c, "id")
	if !ok {
		common.RespondError(c, http.StatusBadRequest, "Invalid album ID format")
		return
	}

	album, photos, err := h.svc.Get(c.Request.Context(), albumID, userID)
	if err != nil {
		h.respondServiceError(c, err, "Failed to get album")
		return
	}

	common.RespondSuccess(c, AlbumDetailResponse{AlbumView: album, Photos: photos})
}

// AccessLogsHandler 查看相册最近的访问记录
func (h *Handler) AccessLogsHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	albumID, ok := parseUintParam(c, "id")
	if !ok {
		common.RespondError(c, http.StatusBadRequest, "Invalid album ID format")
		return
	}

	limit := 100
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			common.RespondError(c, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	logs, err := h.svc.AccessLogs(c.Request.Context(), albumID, userID, limit)
	if err != nil {
		h.respondServiceError(c, err, "Failed to get access logs")
		return
	}
	common.RespondSuccess(c, logs)
}
