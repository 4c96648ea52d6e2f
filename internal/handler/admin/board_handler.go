package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/handler"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/logger"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/realtime"
	boardService "github.com/Mohsinkhani/hotel-management-sub000/internal/service/board"
)

// BoardHandler 房态看板处理器
type BoardHandler struct {
	board      *boardService.Service
	hub        *realtime.Hub
	sendBuffer int
}

// NewBoardHandler 创建房态看板处理器
func NewBoardHandler(board *boardService.Service, hub *realtime.Hub, sendBuffer int) *BoardHandler {
	return &BoardHandler{
		board:      board,
		hub:        hub,
		sendBuffer: sendBuffer,
	}
}

// Snapshot 当前全量房态
// @Summary 房态看板
// @Tags 房态
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=boardService.Snapshot}
// @Router /api/admin/board [get]
func (h *BoardHandler) Snapshot(c *gin.Context) {
	snapshot, err := h.board.Snapshot(c.Request.Context())
	handler.MustSucceed(c, err, snapshot)
}

// Subscribe 订阅房态推送（WebSocket），连接建立后先推送一次全量房态
// @Summary 订阅房态推送
// @Tags 房态
// @Security Bearer
// @Param token query string false "浏览器无法设置请求头时通过查询参数传递令牌"
// @Router /api/admin/board/ws [get]
func (h *BoardHandler) Subscribe(c *gin.Context) {
	snapshot, err := h.board.Snapshot(c.Request.Context())
	if handler.HandleError(c, err) {
		return
	}

	sess := handler.CurrentSession(c)
	if err := realtime.Serve(h.hub, c.Writer, c.Request, sess.Actor(), h.sendBuffer, snapshot); err != nil {
		// Upgrade 失败时已写入 HTTP 错误
		logger.Warn("看板连接升级失败", logger.Actor(sess.Actor()), logger.Err(err))
	}
}
