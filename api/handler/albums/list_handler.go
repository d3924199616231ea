package albums

import (
	"math"
	"net/http"

	"github.com/anoixa/picshare/api/common"
	svcAlbums "github.com/anoixa/picshare/internal/albums"
	"github.com/gin-gonic/gin"
)

// ListAlbumsResponse 相册列表响应
type ListAlbumsResponse struct {
	Albums     []*svcAlbums.AlbumView `json:"albums"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

// ListAlbumsRequest 相册列表请求
type ListAlbumsRequest struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// ListAlbumsHandler 获取相册列表
func (h *Handler) ListAlbumsHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req ListAlbumsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request parameters")
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 20
	}

	albums, total, err := h.svc.List(c.Request.Context(), userID, req.Page, req.Limit)
	if err != nil {
		h.respondServiceError(c, err, "Failed to get albums")
		return
	}

	common.RespondSuccess(c, ListAlbumsResponse{
		Albums:     albums,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(req.Limit))),
	})
}
