package handler

import (
	"errors"
	"net/http"
	"strconv"

	"Reddit_Lite/internal/middleware"
	"Reddit_Lite/internal/service"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	svc *service.VoteService
}

type VoteReq struct {
	Value int8 `json:"value"` // +1 / -1，与现有票同值即撤票
}

func NewVoteHandler(svc *service.VoteService) *VoteHandler {
	return &VoteHandler{svc: svc}
}

// Cast POST /api/post/:id/vote
func (h *VoteHandler) Cast(c *gin.Context) {
	uid, _ := c.Get(middleware.ContextUserIDKey)
	pid, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var req VoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "msg": "invalid params"})
		return
	}

	res, err := h.svc.Cast(c.Request.Context(), uid.(uint64), pid, req.Value)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "score": res.Score, "value": res.Value})
}

// Status GET /api/post/:id/vote 返回分数与我的票值
func (h *VoteHandler) Status(c *gin.Context) {
	uid, _ := c.Get(middleware.ContextUserIDKey)
	pid, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	score, err := h.svc.ScoreOf(c.Request.Context(), uid.(uint64), pid)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	value, err := h.svc.VoteOf(c.Request.Context(), uid.(uint64), pid)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "score": score, "value": value})
}

// 账本错误分类到 HTTP 状态码
func writeLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"code": 1, "msg": "sign in required"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": 1, "msg": "not found"})
	case errors.Is(err, service.ErrNameTaken):
		c.JSON(http.StatusConflict, gin.H{"code": 1, "msg": err.Error()})
	case errors.Is(err, service.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "msg": err.Error()})
	case errors.Is(err, service.ErrWriteFailed):
		c.JSON(http.StatusBadGateway, gin.H{"code": 1, "msg": "write failed, please retry"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "msg": err.Error()})
	}
}
