package albums

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anoixa/picshare/api/common"
	"github.com/anoixa/picshare/api/middleware"
	svcAlbums "github.com/anoixa/picshare/internal/albums"
	"github.com/anoixa/picshare/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 相册处理器
type Handler struct {
	svc    *svcAlbums.Service
	logger *zap.Logger
}

// NewHandler 创建新的相册处理器
func NewHandler(svc *svcAlbums.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

// RegisterOwnerRoutes 注册需要登录的相册路由
func (h *Handler) RegisterOwnerRoutes(group *gin.RouterGroup) {
	group.POST("", h.CreateAlbumHandler)
	group.GET("", h.ListAlbumsHandler)
	group.GET("/:id", h.GetAlbumDetailHandler)
	group.PATCH("/:id", h.UpdateAlbumHandler)
	group.DELETE("/:id", h.DeleteAlbumHandler)
	group.PUT("/:id/expiry", h.ExtendExpiryHandler)
	group.GET("/:id/logs", h.AccessLogsHandler)
}

// RegisterPublicRoutes 注册按分享码访问的公开路由
func (h *Handler) RegisterPublicRoutes(group *gin.RouterGroup) {
	group.GET("/:shareCode", h.ViewSharedAlbumHandler)
	group.GET("/:shareCode/photos/:photoId/download", h.DownloadPhotoHandler)
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

func currentUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return 0, false
	}
	return userID, true
}

func clientOf(c *gin.Context) svcAlbums.Client {
	return svcAlbums.Client{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// respondServiceError 将业务错误映射为 HTTP 状态码
func (h *Handler) respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, svcAlbums.ErrAlbumNotFound):
		common.RespondError(c, http.StatusNotFound, "Album not found")
	case errors.Is(err, svcAlbums.ErrPhotoNotFound):
		common.RespondError(c, http.StatusNotFound, "Photo not found")
	case errors.Is(err, svcAlbums.ErrAlbumExpired):
		common.RespondError(c, http.StatusGone, "This album has expired")
	case errors.Is(err, svcAlbums.ErrInvalidExpiry),
		errors.Is(err, svcAlbums.ErrInvalidTitle),
		errors.Is(err, svcAlbums.ErrNothingToApply):
		common.RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, svcAlbums.ErrTooManyAlbums):
		common.RespondError(c, http.StatusConflict, err.Error())
	case utils.IsClientDisconnect(err):
		h.logger.Debug("client disconnected", zap.String("path", c.FullPath()))
		c.Abort()
	default:
		h.logger.Error(fallback, zap.String("path", c.FullPath()), zap.Error(err))
		common.RespondError(c, http.StatusInternalServerError, fallback)
	}
}
